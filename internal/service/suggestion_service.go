package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
)

// 推荐理由
const (
	ReasonTaughtBefore = "Has taught this course before"
	ReasonAvailability = "Has availability for more courses"
)

// SuggestionService Head TA 推荐排序
type SuggestionService interface {
	// SuggestAssignments 开课不存在时返回空切片；limit <= 0 使用配置的默认条数
	SuggestAssignments(ctx context.Context, courseOfferingID string, limit int) ([]dto.Suggestion, error)
}

type suggestionService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	logger *zap.Logger
}

// NewSuggestionService 创建 SuggestionService 实例
func NewSuggestionService(repo *repository.Repository, rules config.AssignmentConfig, logger *zap.Logger) SuggestionService {
	return &suggestionService{repo: repo, rules: rules, logger: logger}
}

func (s *suggestionService) SuggestAssignments(ctx context.Context, courseOfferingID string, limit int) ([]dto.Suggestion, error) {
	if limit <= 0 {
		limit = s.rules.SuggestionLimit
	}

	offering, err := s.repo.CourseOffering.GetByID(ctx, courseOfferingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.Suggestion{}, nil
		}
		s.logger.Error("查询开课失败", zap.String("course_offering_id", courseOfferingID), zap.Error(err))
		return nil, err
	}

	candidates, err := s.repo.User.ListByRole(ctx, model.RoleHeadTA)
	if err != nil {
		s.logger.Error("列出 Head TA 失败", zap.Error(err))
		return nil, err
	}

	// 候选人之间互不依赖，并发评估；结果按枚举下标落位，保证排序前顺序与串行一致
	results := make([]*dto.Suggestion, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rules.SuggestionWorkers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			sg, err := s.evaluate(gctx, offering, &candidates[i])
			if err != nil {
				return err
			}
			results[i] = sg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("评估候选人失败", zap.String("course_offering_id", courseOfferingID), zap.Error(err))
		return nil, err
	}

	out := make([]dto.Suggestion, 0, len(results))
	for _, sg := range results {
		if sg != nil {
			out = append(out, *sg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// evaluate 不满足资格的候选人返回 nil
func (s *suggestionService) evaluate(ctx context.Context, offering *model.CourseOffering, user *model.User) (*dto.Suggestion, error) {
	verdict, err := checkEligibility(ctx, s.repo, s.rules, user.UserID, offering.CourseOfferingID, s.rules.DefaultHoursPerWeek)
	if err != nil {
		return nil, err
	}
	if !verdict.CanAssign {
		return nil, nil
	}

	sg := &dto.Suggestion{
		UserID:         user.UserID,
		UserName:       user.FullName(),
		Reasons:        []string{},
		SuggestedHours: suggestedHours(offering.CourseNumber(), s.rules),
		CurrentHours:   verdict.CurrentHours,
		MaxHours:       verdict.MaxHours,
	}

	prior, err := s.repo.TAAssignment.ListRecordsByUserAndCourse(ctx, user.UserID, offering.CourseID)
	if err != nil {
		return nil, err
	}
	if len(prior) > 0 {
		sg.Score += s.rules.WeightExperience
		sg.Reasons = append(sg.Reasons, ReasonTaughtBefore)
	}

	if verdict.CurrentHours < s.rules.AvailabilityThresholdHours {
		sg.Score += s.rules.WeightAvailability
		sg.Reasons = append(sg.Reasons, ReasonAvailability)
	}

	if user.GradYear != nil && absInt(*user.GradYear-offering.Year) >= s.rules.ExperienceYears {
		sg.Score += s.rules.WeightSeniority
		sg.Reasons = append(sg.Reasons, seniorityReason(s.rules.ExperienceYears))
	}

	return sg, nil
}

func seniorityReason(years int) string {
	return fmt.Sprintf("Experienced TA (%d+ years)", years)
}

// suggestedHours 课程编号的字母前缀命中 heavy 列表时给高工时，否则给低工时
func suggestedHours(courseNumber string, rules config.AssignmentConfig) int {
	prefix := coursePrefix(courseNumber)
	for _, p := range rules.HeavyCoursePrefixes {
		if prefix != "" && strings.EqualFold(p, prefix) {
			return rules.HeavyCourseHours
		}
	}
	return rules.LightCourseHours
}

// coursePrefix "cs 101" → "CS"，"ECE2400" → "ECE"
func coursePrefix(courseNumber string) string {
	trimmed := strings.TrimSpace(courseNumber)
	end := strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(trimmed)
	}
	return strings.ToUpper(trimmed[:end])
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ── 缓存装饰器 ──

const suggestionKeyPrefix = "suggestions:"

// SuggestionCache 推荐结果缓存，由 pkg/redis.Client 实现
type SuggestionCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type cachedSuggestionService struct {
	next   SuggestionService
	cache  SuggestionCache
	ttl    time.Duration
	limit  int
	logger *zap.Logger
}

// NewCachedSuggestionService 为 SuggestionService 加一层缓存。
// 缓存读写失败只记日志，回退到直接计算。
func NewCachedSuggestionService(next SuggestionService, cache SuggestionCache, ttl time.Duration, defaultLimit int, logger *zap.Logger) SuggestionService {
	return &cachedSuggestionService{next: next, cache: cache, ttl: ttl, limit: defaultLimit, logger: logger}
}

func (c *cachedSuggestionService) SuggestAssignments(ctx context.Context, courseOfferingID string, limit int) ([]dto.Suggestion, error) {
	if limit <= 0 {
		limit = c.limit
	}
	key := fmt.Sprintf("%s%s:%d", suggestionKeyPrefix, courseOfferingID, limit)

	var cached []dto.Suggestion
	hit, err := c.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("读取推荐缓存失败", zap.String("key", key), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	result, err := c.next.SuggestAssignments(ctx, courseOfferingID, limit)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, result, c.ttl); err != nil {
		c.logger.Warn("写入推荐缓存失败", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// invalidateSuggestions 分配或候选人变更后清空全部推荐缓存
func invalidateSuggestions(ctx context.Context, cache SuggestionCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.DeleteByPrefix(ctx, suggestionKeyPrefix); err != nil {
		logger.Warn("清除推荐缓存失败", zap.Error(err))
	}
}
