package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/pkg/semester"
)

func setupSuggestion() (SuggestionService, *testRepos) {
	repos := newTestRepos()
	svc := NewSuggestionService(repos.toRepository(), config.DefaultAssignmentConfig(), zap.NewNop())

	repos.addCourse("c-target", "CS 330")
	repos.addOffering("target", "c-target", 2024, semester.Fall)
	return svc, repos
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}

func TestSuggestion_UnknownOffering(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("u1", "Ada", "Lovelace", model.RoleHeadTA, nil)

	got, err := svc.SuggestAssignments(context.Background(), "does-not-exist", 5)
	if err != nil {
		t.Fatalf("未知开课不应报错: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("期望空切片，实际 %#v", got)
	}
}

func TestSuggestion_ExperienceRanksHigher(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("fresh", "Alice", "Adams", model.RoleHeadTA, nil)
	repos.addUser("veteran", "Bob", "Brown", model.RoleHeadTA, nil)
	// veteran 在上学期带过同一门课
	repos.addOffering("prev", "c-target", 2024, semester.Spring)
	repos.addAssignment("veteran", "prev", intPtr(10))

	got, err := svc.SuggestAssignments(context.Background(), "target", 5)
	if err != nil {
		t.Fatalf("SuggestAssignments 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 个候选人，实际 %d", len(got))
	}
	if got[0].UserID != "veteran" {
		t.Errorf("有经验者应排第一，实际顺序 %s, %s", got[0].UserID, got[1].UserID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("有经验者得分应严格更高: %d vs %d", got[0].Score, got[1].Score)
	}
	if !hasReason(got[0].Reasons, ReasonTaughtBefore) {
		t.Errorf("veteran 应包含经验理由，实际 %v", got[0].Reasons)
	}
	if hasReason(got[1].Reasons, ReasonTaughtBefore) {
		t.Errorf("fresh 不应包含经验理由，实际 %v", got[1].Reasons)
	}
}

func TestSuggestion_ScoreMatchesReasons(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("senior", "Carol", "Clark", model.RoleHeadTA, intPtr(2022))
	repos.addOffering("prev", "c-target", 2023, semester.Fall)
	repos.addAssignment("senior", "prev", nil)

	got, _ := svc.SuggestAssignments(context.Background(), "target", 5)
	if len(got) != 1 {
		t.Fatalf("期望 1 个候选人，实际 %d", len(got))
	}
	s := got[0]
	if s.Score != 100 {
		t.Errorf("三项信号全部命中应得 100 分，实际 %d", s.Score)
	}
	want := []string{ReasonTaughtBefore, ReasonAvailability, "Experienced TA (2+ years)"}
	if strings.Join(s.Reasons, "|") != strings.Join(want, "|") {
		t.Errorf("期望理由 %v，实际 %v", want, s.Reasons)
	}
	if s.UserName != "Carol Clark" || s.MaxHours != 20 || s.CurrentHours != 0 {
		t.Errorf("候选人信息错误: %+v", s)
	}
}

func TestSuggestion_IneligibleDropped(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("busy", "Dan", "Davis", model.RoleHeadTA, nil)
	repos.addUser("free", "Eve", "Evans", model.RoleHeadTA, nil)
	repos.addUser("boss", "Frank", "Ford", model.RoleAdmin, nil)
	repos.addUser("already", "Gina", "Green", model.RoleHeadTA, nil)

	repos.addCourse("c-other", "MATH 101")
	repos.addOffering("other", "c-other", 2024, semester.Fall)
	repos.addAssignment("busy", "other", intPtr(15))
	repos.addAssignment("already", "target", intPtr(5))

	got, err := svc.SuggestAssignments(context.Background(), "target", 5)
	if err != nil {
		t.Fatalf("SuggestAssignments 失败: %v", err)
	}
	if len(got) != 1 || got[0].UserID != "free" {
		t.Errorf("只有 free 满足资格，实际 %+v", got)
	}
}

func TestSuggestion_AvailabilityThreshold(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("half", "Hank", "Hill", model.RoleHeadTA, nil)
	repos.addCourse("c-other", "MATH 101")
	repos.addOffering("other", "c-other", 2024, semester.Fall)
	repos.addAssignment("half", "other", intPtr(10))

	got, _ := svc.SuggestAssignments(context.Background(), "target", 5)
	if len(got) != 1 {
		t.Fatalf("期望 1 个候选人，实际 %d", len(got))
	}
	if hasReason(got[0].Reasons, ReasonAvailability) || got[0].Score != 0 {
		t.Errorf("已有 10 小时不应命中空闲理由，实际 %+v", got[0])
	}
	if got[0].CurrentHours != 10 {
		t.Errorf("期望 currentHours=10，实际 %d", got[0].CurrentHours)
	}
}

func TestSuggestion_TiesKeepEnumerationOrder(t *testing.T) {
	svc, repos := setupSuggestion()
	// ListByRole 按姓氏排序：Abbott < Baker < Carter < Dunn
	repos.addUser("u-d", "Zed", "Dunn", model.RoleHeadTA, nil)
	repos.addUser("u-b", "Zed", "Baker", model.RoleHeadTA, nil)
	repos.addUser("u-a", "Zed", "Abbott", model.RoleHeadTA, nil)
	repos.addUser("u-c", "Zed", "Carter", model.RoleHeadTA, nil)

	for i := 0; i < 20; i++ {
		got, err := svc.SuggestAssignments(context.Background(), "target", 10)
		if err != nil {
			t.Fatalf("SuggestAssignments 失败: %v", err)
		}
		order := make([]string, 0, len(got))
		for _, s := range got {
			order = append(order, s.UserID)
		}
		if strings.Join(order, ",") != "u-a,u-b,u-c,u-d" {
			t.Fatalf("同分候选人应保持枚举顺序，第 %d 次实际 %v", i, order)
		}
	}
}

func TestSuggestion_Limit(t *testing.T) {
	svc, repos := setupSuggestion()
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		repos.addUser("u-"+name, "TA", name, model.RoleHeadTA, nil)
	}

	got, _ := svc.SuggestAssignments(context.Background(), "target", 3)
	if len(got) != 3 {
		t.Errorf("limit=3 应返回 3 个，实际 %d", len(got))
	}

	got, _ = svc.SuggestAssignments(context.Background(), "target", 0)
	if len(got) != 5 {
		t.Errorf("limit<=0 应使用默认 5，实际 %d", len(got))
	}
}

func TestSuggestion_SuggestedHours(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("u1", "Ada", "Lovelace", model.RoleHeadTA, nil)
	repos.addCourse("c-math", "MATH 221")
	repos.addOffering("math", "c-math", 2024, semester.Fall)

	cs, _ := svc.SuggestAssignments(context.Background(), "target", 1)
	math, _ := svc.SuggestAssignments(context.Background(), "math", 1)
	if len(cs) != 1 || cs[0].SuggestedHours != 15 {
		t.Errorf("CS 课程应建议 15 小时，实际 %+v", cs)
	}
	if len(math) != 1 || math[0].SuggestedHours != 10 {
		t.Errorf("非 CS 课程应建议 10 小时，实际 %+v", math)
	}
}

func TestCoursePrefix(t *testing.T) {
	cases := map[string]string{
		"CS 101":   "CS",
		"cs101":    "CS",
		" ECE2400": "ECE",
		"101":      "",
		"":         "",
	}
	for in, want := range cases {
		if got := coursePrefix(in); got != want {
			t.Errorf("coursePrefix(%q) 期望 %q，实际 %q", in, want, got)
		}
	}

	rules := config.DefaultAssignmentConfig()
	rules.HeavyCoursePrefixes = []string{"cs", "ECE"}
	if suggestedHours("ECE 2400", rules) != rules.HeavyCourseHours {
		t.Error("ECE 应命中 heavy 前缀")
	}
	if suggestedHours("CSE 101", rules) != rules.LightCourseHours {
		t.Error("CSE 不应被当作 CS 前缀命中")
	}
}

func TestSuggestion_RepoError(t *testing.T) {
	svc, repos := setupSuggestion()
	repos.addUser("u1", "Ada", "Lovelace", model.RoleHeadTA, nil)
	boom := errors.New("timeout")
	repos.assignment.err = boom

	if _, err := svc.SuggestAssignments(context.Background(), "target", 5); !errors.Is(err, boom) {
		t.Errorf("期望返回数据访问错误，实际 %v", err)
	}
}

// ── 缓存装饰器 ──

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, prefix)
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type countingSuggestionService struct {
	calls int
	out   []dto.Suggestion
}

func (s *countingSuggestionService) SuggestAssignments(_ context.Context, _ string, _ int) ([]dto.Suggestion, error) {
	s.calls++
	return s.out, nil
}

func TestCachedSuggestion_HitAndInvalidate(t *testing.T) {
	inner := &countingSuggestionService{out: []dto.Suggestion{{UserID: "u1", Score: 80, Reasons: []string{ReasonTaughtBefore}}}}
	cache := newMemoryCache()
	svc := NewCachedSuggestionService(inner, cache, time.Minute, 5, zap.NewNop())
	ctx := context.Background()

	first, _ := svc.SuggestAssignments(ctx, "o1", 0)
	second, _ := svc.SuggestAssignments(ctx, "o1", 5)
	if inner.calls != 1 {
		t.Errorf("limit=0 与 limit=5 应命中同一缓存，实际调用 %d 次", inner.calls)
	}
	if len(second) != 1 || second[0].UserID != first[0].UserID || second[0].Reasons[0] != ReasonTaughtBefore {
		t.Errorf("缓存结果应与首次一致，实际 %+v", second)
	}

	invalidateSuggestions(ctx, cache, zap.NewNop())
	svc.SuggestAssignments(ctx, "o1", 5)
	if inner.calls != 2 {
		t.Errorf("失效后应重新计算，实际调用 %d 次", inner.calls)
	}
}

func TestCachedSuggestion_CacheErrorFallsBack(t *testing.T) {
	inner := &countingSuggestionService{out: []dto.Suggestion{}}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	svc := NewCachedSuggestionService(inner, cache, time.Minute, 5, zap.NewNop())

	if _, err := svc.SuggestAssignments(context.Background(), "o1", 5); err != nil {
		t.Fatalf("缓存故障不应影响结果: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("缓存故障时应直接计算，实际调用 %d 次", inner.calls)
	}
}
