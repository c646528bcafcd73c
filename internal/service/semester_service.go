package service

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"headta/backend/internal/dto"
	"headta/backend/pkg/semester"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterRangeInvalid = errors.New("semester range start must not be after its end")
	ErrSemesterRangeTooWide = fmt.Errorf("semester range must not span more than %d years", maxRangeYears)
)

const maxRangeYears = 20

// SemesterService 学期日历业务接口，所有"当前"判断基于注入的时钟
type SemesterService interface {
	Overview() *dto.SemesterOverview
	Parse(text string) (*dto.SemesterResponse, error)
	// Range from/to 为空时默认从当前学期起的两个学年
	Range(q *dto.SemesterRangeQuery) ([]dto.SemesterResponse, error)
	// CalendarICS 每个学期一个全天 VEVENT
	CalendarICS(q *dto.SemesterRangeQuery) ([]byte, error)
}

type semesterService struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(logger *zap.Logger) SemesterService {
	return &semesterService{now: time.Now, logger: logger}
}

func (s *semesterService) Overview() *dto.SemesterOverview {
	now := s.now()
	cur := semester.Current(now)
	return &dto.SemesterOverview{
		Current: s.toResponse(cur, now),
		Next:    s.toResponse(semester.Next(cur), now),
	}
}

func (s *semesterService) Parse(text string) (*dto.SemesterResponse, error) {
	term, err := semester.Parse(text)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(term, s.now())
	return &resp, nil
}

func (s *semesterService) Range(q *dto.SemesterRangeQuery) ([]dto.SemesterResponse, error) {
	terms, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}
	now := s.now()
	result := make([]dto.SemesterResponse, 0, len(terms))
	for _, t := range terms {
		result = append(result, s.toResponse(t, now))
	}
	return result, nil
}

func (s *semesterService) CalendarICS(q *dto.SemesterRangeQuery) ([]byte, error) {
	terms, err := s.resolveRange(q)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Head TA Directory//Semester Calendar//EN")
	cal.SetXWRCalName("Academic Semesters")

	stamp := s.now().UTC()
	for _, t := range terms {
		ev := cal.AddEvent(fmt.Sprintf("%d-%s@headta", t.Year, t.Season))
		ev.SetDtStampTime(stamp)
		ev.SetSummary(t.Display)
		ev.SetDescription(fmt.Sprintf("%s: %s to %s", t.Display,
			t.StartDate.Format("Jan 2, 2006"), t.EndDate.Format("Jan 2, 2006")))
		ev.SetAllDayStartAt(t.StartDate)
		// DTEND 为开区间，结束日需要顺延一天
		ev.SetAllDayEndAt(t.EndDate.AddDate(0, 0, 1))
	}

	s.logger.Debug("生成学期日历", zap.Int("events", len(terms)))
	return []byte(cal.Serialize()), nil
}

// ── 内部辅助方法 ──

func (s *semesterService) resolveRange(q *dto.SemesterRangeQuery) ([]semester.Semester, error) {
	from := semester.Current(s.now())
	if q.From != "" {
		parsed, err := semester.Parse(q.From)
		if err != nil {
			return nil, err
		}
		from = parsed
	}

	to := semester.New(from.Year+2, from.Season)
	if q.To != "" {
		parsed, err := semester.Parse(q.To)
		if err != nil {
			return nil, err
		}
		to = parsed
	}

	if semester.Compare(from, to) > 0 {
		return nil, ErrSemesterRangeInvalid
	}
	if to.Year-from.Year > maxRangeYears {
		return nil, ErrSemesterRangeTooWide
	}
	return semester.Range(from.Year, from.Season, to.Year, to.Season, q.IncludeSummer), nil
}

func (s *semesterService) toResponse(t semester.Semester, now time.Time) dto.SemesterResponse {
	status := "current"
	switch {
	case semester.IsPast(t, now):
		status = "past"
	case semester.IsFuture(t, now):
		status = "future"
	}
	return dto.SemesterResponse{Semester: t, Status: status}
}
