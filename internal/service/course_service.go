package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	"headta/backend/pkg/semester"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNumberExists = errors.New("course number already exists")
	ErrOfferingExists     = errors.New("course is already offered in this semester")
)

// CourseService 课程与开课业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)

	CreateOffering(ctx context.Context, req *dto.CreateOfferingRequest, callerID string) (*dto.OfferingResponse, error)
	GetOffering(ctx context.Context, id string) (*dto.OfferingResponse, error)
	// ListOfferings term 为 nil 时返回全部学期
	ListOfferings(ctx context.Context, term *semester.Semester) ([]dto.OfferingResponse, error)
	DeleteOffering(ctx context.Context, id string, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	cache  SuggestionCache
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例，cache 可为 nil
func NewCourseService(repo *repository.Repository, cache SuggestionCache, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Course ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	number := normalizeCourseNumber(req.CourseNumber)
	if _, err := s.repo.Course.GetByNumber(ctx, number); err == nil {
		return nil, ErrCourseNumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &model.Course{CourseNumber: number, Title: strings.TrimSpace(req.Title)}
	c.CreatedByUser(callerID)

	if err := s.repo.Course.Create(ctx, c); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return toCourseResponse(c), nil
}

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	c, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(c), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	list, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CourseResponse, 0, len(list))
	for i := range list {
		result = append(result, *toCourseResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Offering ──────────────────────

func (s *courseService) CreateOffering(ctx context.Context, req *dto.CreateOfferingRequest, callerID string) (*dto.OfferingResponse, error) {
	term, err := semester.Parse(req.Semester)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	var professor *model.Professor
	if req.ProfessorID != nil {
		professor, err = s.repo.Professor.GetByID(ctx, *req.ProfessorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfessorNotFound
			}
			return nil, err
		}
	}

	if _, err := s.repo.CourseOffering.GetByCourseAndSemester(ctx, course.CourseID, term.Year, string(term.Season)); err == nil {
		return nil, ErrOfferingExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	o := &model.CourseOffering{
		CourseID:    course.CourseID,
		ProfessorID: req.ProfessorID,
		Semester:    term.Display,
		Year:        term.Year,
		Season:      string(term.Season),
	}
	o.CreatedByUser(callerID)

	if err := s.repo.CourseOffering.Create(ctx, o); err != nil {
		s.logger.Error("创建开课失败", zap.Error(err))
		return nil, err
	}

	o.Course = course
	o.Professor = professor
	return toOfferingResponse(o), nil
}

func (s *courseService) GetOffering(ctx context.Context, id string) (*dto.OfferingResponse, error) {
	o, err := s.repo.CourseOffering.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferingNotFound
		}
		s.logger.Error("查询开课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toOfferingResponse(o), nil
}

func (s *courseService) ListOfferings(ctx context.Context, term *semester.Semester) ([]dto.OfferingResponse, error) {
	var filter *repository.SemesterFilter
	if term != nil {
		filter = &repository.SemesterFilter{Year: term.Year, Season: string(term.Season)}
	}
	list, err := s.repo.CourseOffering.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出开课失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.OfferingResponse, 0, len(list))
	for i := range list {
		result = append(result, *toOfferingResponse(&list[i]))
	}
	return result, nil
}

func (s *courseService) DeleteOffering(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.CourseOffering.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOfferingNotFound
		}
		return err
	}
	if err := s.repo.CourseOffering.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除开课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	invalidateSuggestions(ctx, s.cache, s.logger)
	return nil
}

// ── 内部辅助方法 ──

// normalizeCourseNumber "cs101" / " cs  101 " → "CS 101"
func normalizeCourseNumber(raw string) string {
	trimmed := strings.Join(strings.Fields(raw), " ")
	end := strings.IndexFunc(trimmed, func(r rune) bool { return !unicode.IsLetter(r) })
	if end <= 0 {
		return strings.ToUpper(trimmed)
	}
	return strings.ToUpper(trimmed[:end]) + " " + strings.ToUpper(strings.TrimSpace(trimmed[end:]))
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{ID: c.CourseID, CourseNumber: c.CourseNumber, Title: c.Title}
}

func toOfferingResponse(o *model.CourseOffering) *dto.OfferingResponse {
	resp := &dto.OfferingResponse{
		ID:       o.CourseOfferingID,
		Semester: o.Semester,
		Year:     o.Year,
		Season:   o.Season,
	}
	if o.Course != nil {
		resp.Course = toCourseResponse(o.Course)
	}
	if o.Professor != nil {
		resp.Professor = toProfessorResponse(o.Professor)
	}
	return resp
}
