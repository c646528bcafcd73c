package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/model"
	"headta/backend/pkg/semester"
)

func setupEligibility() (EligibilityService, *testRepos) {
	repos := newTestRepos()
	svc := NewEligibilityService(repos.toRepository(), config.DefaultAssignmentConfig(), zap.NewNop())

	repos.addUser("ta", "Grace", "Hopper", model.RoleHeadTA, intPtr(2026))
	repos.addUser("admin", "Alan", "Turing", model.RoleAdmin, nil)
	repos.addCourse("c-target", "CS 330")
	repos.addOffering("target", "c-target", 2024, semester.Fall)
	return svc, repos
}

func assertSingleReason(t *testing.T, reasons []string, want string) {
	t.Helper()
	if len(reasons) != 1 || reasons[0] != want {
		t.Errorf("期望唯一原因 %q，实际 %v", want, reasons)
	}
}

func TestEligibility_Eligible(t *testing.T) {
	svc, _ := setupEligibility()

	v, err := svc.CanAssignTA(context.Background(), "ta", "target", 10)
	if err != nil {
		t.Fatalf("CanAssignTA 不应失败: %v", err)
	}
	if !v.CanAssign {
		t.Errorf("期望可分配，实际原因 %v", v.Reasons)
	}
	if v.Reasons == nil || len(v.Reasons) != 0 {
		t.Errorf("可分配时 reasons 应为空切片，实际 %#v", v.Reasons)
	}
	if v.MaxHours != 20 || v.CurrentHours != 0 {
		t.Errorf("期望 current=0 max=20，实际 %d/%d", v.CurrentHours, v.MaxHours)
	}
}

func TestEligibility_StructuralFailures(t *testing.T) {
	svc, repos := setupEligibility()
	repos.addAssignment("ta", "target", intPtr(5))

	cases := []struct {
		name     string
		user     string
		offering string
		want     string
	}{
		{"用户不存在", "ghost", "target", ReasonUserNotFound},
		{"非 Head TA", "admin", "target", ReasonNotHeadTA},
		{"开课不存在", "ta", "missing", ReasonOfferingNotFound},
		{"重复分配", "ta", "target", ReasonAlreadyAssigned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := svc.CanAssignTA(context.Background(), tc.user, tc.offering, 1)
			if err != nil {
				t.Fatalf("业务规则不满足不应返回 error: %v", err)
			}
			if v.CanAssign {
				t.Error("期望不可分配")
			}
			assertSingleReason(t, v.Reasons, tc.want)
			if v.MaxHours != 20 {
				t.Errorf("期望 maxHours=20，实际 %d", v.MaxHours)
			}
		})
	}
}

func TestEligibility_ExceedsHours(t *testing.T) {
	svc, repos := setupEligibility()
	repos.addCourse("c-other", "MATH 101")
	repos.addOffering("other", "c-other", 2024, semester.Fall)
	repos.addAssignment("ta", "other", intPtr(15))

	v, err := svc.CanAssignTA(context.Background(), "ta", "target", 10)
	if err != nil {
		t.Fatalf("CanAssignTA 失败: %v", err)
	}
	if v.CanAssign {
		t.Fatal("15+10 超过 20 小时应不可分配")
	}
	if v.CurrentHours != 15 || v.MaxHours != 20 {
		t.Errorf("期望 current=15 max=20，实际 %d/%d", v.CurrentHours, v.MaxHours)
	}
	assertSingleReason(t, v.Reasons, "Adding 10 hours would exceed maximum of 20 hours per week")
}

func TestEligibility_ExactlyAtCeilingAllowed(t *testing.T) {
	svc, repos := setupEligibility()
	repos.addCourse("c-other", "MATH 101")
	repos.addOffering("other", "c-other", 2024, semester.Fall)
	repos.addAssignment("ta", "other", intPtr(10))

	v, _ := svc.CanAssignTA(context.Background(), "ta", "target", 10)
	if !v.CanAssign {
		t.Errorf("10+10 恰好等于上限应允许，实际原因 %v", v.Reasons)
	}
}

func TestEligibility_TooManyCourses(t *testing.T) {
	svc, repos := setupEligibility()
	for _, id := range []string{"x", "y", "z"} {
		repos.addCourse("c-"+id, "HIST "+id)
		repos.addOffering(id, "c-"+id, 2024, semester.Fall)
		repos.addAssignment("ta", id, intPtr(1))
	}

	v, err := svc.CanAssignTA(context.Background(), "ta", "target", 1)
	if err != nil {
		t.Fatalf("CanAssignTA 失败: %v", err)
	}
	if v.CanAssign {
		t.Fatal("已有 3 门课时应不可分配")
	}
	assertSingleReason(t, v.Reasons, "TA already has 3 course assignments this semester")
	if v.CurrentHours != 3 {
		t.Errorf("期望 currentHours=3，实际 %d", v.CurrentHours)
	}
}

func TestEligibility_AccumulatesReasons(t *testing.T) {
	svc, repos := setupEligibility()
	for _, id := range []string{"x", "y", "z"} {
		repos.addCourse("c-"+id, "HIST "+id)
		repos.addOffering(id, "c-"+id, 2024, semester.Fall)
		repos.addAssignment("ta", id, nil) // 3 × 默认 10 小时
	}

	v, _ := svc.CanAssignTA(context.Background(), "ta", "target", 10)
	if len(v.Reasons) != 2 {
		t.Fatalf("期望同时给出工时与课程数两条原因，实际 %v", v.Reasons)
	}
	if !strings.HasPrefix(v.Reasons[0], "Adding 10 hours") || !strings.HasPrefix(v.Reasons[1], "TA already has 3") {
		t.Errorf("原因顺序错误: %v", v.Reasons)
	}
	if v.CurrentHours != 30 {
		t.Errorf("期望 currentHours=30，实际 %d", v.CurrentHours)
	}
}

func TestEligibility_OtherSemestersIgnored(t *testing.T) {
	svc, repos := setupEligibility()
	repos.addCourse("c-old", "CS 100")
	repos.addOffering("old", "c-old", 2024, semester.Spring)
	repos.addAssignment("ta", "old", intPtr(20))

	v, _ := svc.CanAssignTA(context.Background(), "ta", "target", 10)
	if !v.CanAssign || v.CurrentHours != 0 {
		t.Errorf("其他学期的工时不应计入，实际 %+v", v)
	}
}

func TestEligibility_RepoErrorReturned(t *testing.T) {
	svc, repos := setupEligibility()
	boom := errors.New("connection reset")
	repos.assignment.err = boom

	if _, err := svc.CanAssignTA(context.Background(), "ta", "target", 10); !errors.Is(err, boom) {
		t.Errorf("期望返回数据访问错误，实际 %v", err)
	}
}
