package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	pkgerrors "headta/backend/pkg/errors"
	"headta/backend/pkg/semester"
)

func setupAssignment() (*assignmentService, *testRepos, *memoryCache) {
	repos := newTestRepos()
	cache := newMemoryCache()
	svc := NewAssignmentService(repos.toRepository(), config.DefaultAssignmentConfig(), cache, zap.NewNop()).(*assignmentService)

	repos.addUser("ta", "Grace", "Hopper", model.RoleHeadTA, nil)
	repos.addCourse("c1", "CS 330")
	repos.addCourse("c2", "MATH 101")
	repos.addOffering("o1", "c1", 2024, semester.Fall)
	repos.addOffering("o2", "c2", 2024, semester.Fall)
	return svc, repos, cache
}

func TestAssignmentService_Assign_Success(t *testing.T) {
	svc, repos, cache := setupAssignment()
	cache.data["suggestions:o1:5"] = []byte("[]")

	resp, err := svc.Assign(context.Background(), "o1", &dto.AssignRequest{UserID: "ta", HoursPerWeek: intPtr(12)}, "admin-1")
	if err != nil {
		t.Fatalf("Assign 应成功: %v", err)
	}
	if resp.ID == "" || resp.UserID != "ta" || resp.CourseOfferingID != "o1" {
		t.Errorf("分配响应错误: %+v", resp)
	}
	if len(repos.assignment.assignments) != 1 {
		t.Errorf("期望写入 1 条分配，实际 %d", len(repos.assignment.assignments))
	}
	if _, ok := cache.data["suggestions:o1:5"]; ok {
		t.Error("分配成功后应清除推荐缓存")
	}
}

func TestAssignmentService_Assign_NotEligible(t *testing.T) {
	svc, repos, cache := setupAssignment()
	repos.addAssignment("ta", "o2", intPtr(15))

	_, err := svc.Assign(context.Background(), "o1", &dto.AssignRequest{UserID: "ta"}, "admin-1")
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("期望 ErrNotEligible，实际 %v", err)
	}
	var eligErr *EligibilityError
	if !errors.As(err, &eligErr) {
		t.Fatal("错误应携带 EligibilityVerdict")
	}
	if eligErr.Verdict.CurrentHours != 15 || len(eligErr.Verdict.Reasons) != 1 {
		t.Errorf("verdict 错误: %+v", eligErr.Verdict)
	}
	if len(repos.assignment.assignments) != 1 {
		t.Error("不满足资格时不应写入")
	}
	if len(cache.deletes) != 0 {
		t.Error("未写入时不应清除缓存")
	}
}

func TestAssignmentService_Assign_Duplicate(t *testing.T) {
	svc, _, _ := setupAssignment()
	ctx := context.Background()
	req := &dto.AssignRequest{UserID: "ta", HoursPerWeek: intPtr(5)}

	if _, err := svc.Assign(ctx, "o1", req, "admin-1"); err != nil {
		t.Fatalf("首次分配应成功: %v", err)
	}
	_, err := svc.Assign(ctx, "o1", req, "admin-1")
	var eligErr *EligibilityError
	if !errors.As(err, &eligErr) || eligErr.Verdict.Reasons[0] != ReasonAlreadyAssigned {
		t.Errorf("重复分配应被拒绝，实际 %v", err)
	}
}

func TestAssignmentService_Unassign(t *testing.T) {
	svc, repos, cache := setupAssignment()
	a := repos.addAssignment("ta", "o1", nil)

	if err := svc.Unassign(context.Background(), a.AssignmentID, "admin-1"); err != nil {
		t.Fatalf("Unassign 应成功: %v", err)
	}
	if len(repos.assignment.assignments) != 0 {
		t.Error("分配应已删除")
	}
	if len(cache.deletes) != 1 || cache.deletes[0] != suggestionKeyPrefix {
		t.Errorf("应按前缀清除推荐缓存，实际 %v", cache.deletes)
	}

	if err := svc.Unassign(context.Background(), "missing", "admin-1"); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，实际 %v", err)
	}
}

func TestAssignmentService_UpdateHours(t *testing.T) {
	svc, repos, _ := setupAssignment()
	repos.addAssignment("ta", "o2", intPtr(8))
	a := repos.addAssignment("ta", "o1", nil) // 默认 10 小时

	// 8 + 12 = 20，不超过上限；本条原来的 10 小时不重复计算
	resp, err := svc.UpdateHours(context.Background(), a.AssignmentID, &dto.UpdateHoursRequest{HoursPerWeek: intPtr(12), Version: 1}, "admin-1")
	if err != nil {
		t.Fatalf("UpdateHours 应成功: %v", err)
	}
	if resp.HoursPerWeek == nil || *resp.HoursPerWeek != 12 || resp.Version != 2 {
		t.Errorf("更新结果错误: %+v", resp)
	}

	// 8 + 13 > 20
	_, err = svc.UpdateHours(context.Background(), a.AssignmentID, &dto.UpdateHoursRequest{HoursPerWeek: intPtr(13), Version: 2}, "admin-1")
	var eligErr *EligibilityError
	if !errors.As(err, &eligErr) {
		t.Fatalf("超过上限应返回 EligibilityError，实际 %v", err)
	}
	if eligErr.Verdict.CurrentHours != 8 {
		t.Errorf("currentHours 应扣除本条记录，期望 8，实际 %d", eligErr.Verdict.CurrentHours)
	}
}

func TestAssignmentService_UpdateHours_StaleVersion(t *testing.T) {
	svc, repos, _ := setupAssignment()
	a := repos.addAssignment("ta", "o1", intPtr(5))

	_, err := svc.UpdateHours(context.Background(), a.AssignmentID, &dto.UpdateHoursRequest{HoursPerWeek: intPtr(6), Version: 7}, "admin-1")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际 %v", err)
	}
}

func TestAssignmentService_ListForOffering(t *testing.T) {
	svc, repos, _ := setupAssignment()
	repos.addAssignment("ta", "o1", intPtr(5))

	list, err := svc.ListForOffering(context.Background(), "o1")
	if err != nil {
		t.Fatalf("ListForOffering 失败: %v", err)
	}
	if len(list) != 1 || list[0].User == nil || list[0].User.Name != "Grace Hopper" {
		t.Errorf("期望包含用户信息，实际 %+v", list)
	}

	if _, err := svc.ListForOffering(context.Background(), "missing"); !errors.Is(err, ErrOfferingNotFound) {
		t.Errorf("期望 ErrOfferingNotFound，实际 %v", err)
	}
}

func TestAssignmentService_ListForUser_GroupsByTense(t *testing.T) {
	svc, repos, _ := setupAssignment()
	svc.now = func() time.Time { return time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC) } // Fall 2024

	repos.addOffering("past", "c1", 2024, semester.Spring)
	repos.addOffering("future", "c1", 2025, semester.Spring)
	repos.addAssignment("ta", "past", nil)
	repos.addAssignment("ta", "o1", nil)
	repos.addAssignment("ta", "future", nil)

	h, err := svc.ListForUser(context.Background(), "ta")
	if err != nil {
		t.Fatalf("ListForUser 失败: %v", err)
	}
	if len(h.Past) != 1 || len(h.Current) != 1 || len(h.Future) != 1 {
		t.Fatalf("期望 1/1/1，实际 %d/%d/%d", len(h.Past), len(h.Current), len(h.Future))
	}
	if h.Current[0].Semester != "Fall 2024" {
		t.Errorf("当前学期应为 Fall 2024，实际 %s", h.Current[0].Semester)
	}

	if _, err := svc.ListForUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际 %v", err)
	}
}
