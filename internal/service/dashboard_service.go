package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"headta/backend/config"
	"headta/backend/internal/dto"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	"headta/backend/pkg/semester"
)

// DashboardService 管理员学期概览
type DashboardService interface {
	// Get term 为 nil 时取当前学期
	Get(ctx context.Context, term *semester.Semester) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	now    func() time.Time
	logger *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(repo *repository.Repository, rules config.AssignmentConfig, logger *zap.Logger) DashboardService {
	return &dashboardService{repo: repo, rules: rules, now: time.Now, logger: logger}
}

func (s *dashboardService) Get(ctx context.Context, term *semester.Semester) (*dto.DashboardResponse, error) {
	t := semester.Current(s.now())
	if term != nil {
		t = *term
	}
	filter := repository.SemesterFilter{Year: t.Year, Season: string(t.Season)}

	var (
		offerings []model.CourseOffering
		records   []model.TAAssignmentRecord
		headTAs   []model.User
		eg        errgroup.Group
	)
	// 三个查询互不依赖，并发执行
	eg.Go(func() error {
		var err error
		offerings, err = s.repo.CourseOffering.List(ctx, &filter)
		return err
	})
	eg.Go(func() error {
		var err error
		records, err = s.repo.TAAssignment.ListRecordsBySemester(ctx, filter)
		return err
	})
	eg.Go(func() error {
		var err error
		headTAs, err = s.repo.User.ListByRole(ctx, model.RoleHeadTA)
		return err
	})
	if err := eg.Wait(); err != nil {
		s.logger.Error("加载学期概览失败", zap.String("semester", t.Display), zap.Error(err))
		return nil, err
	}

	staffed := make(map[string]bool, len(records))
	loads := make(map[string]*dto.TALoad, len(headTAs))
	for i := range headTAs {
		loads[headTAs[i].UserID] = &dto.TALoad{UserID: headTAs[i].UserID, Name: headTAs[i].FullName()}
	}
	for _, rec := range records {
		staffed[rec.CourseOfferingID] = true
		if l, ok := loads[rec.UserID]; ok {
			l.CourseCount++
			l.HoursPerWeek += hoursOrDefault(rec.HoursPerWeek, s.rules.DefaultHoursPerWeek)
		}
	}

	resp := &dto.DashboardResponse{
		Semester:           t.Display,
		NextSemester:       semester.Next(t).Display,
		TotalOfferings:     len(offerings),
		UnstaffedOfferings: []dto.OfferingResponse{},
		HeadTACount:        len(headTAs),
		OverloadedTAs:      []dto.TALoad{},
	}
	for i := range offerings {
		if staffed[offerings[i].CourseOfferingID] {
			resp.StaffedOfferings++
		} else {
			resp.UnstaffedOfferings = append(resp.UnstaffedOfferings, *toOfferingResponse(&offerings[i]))
		}
	}

	for _, l := range loads {
		full := l.HoursPerWeek >= s.rules.MaxHoursPerWeek || l.CourseCount >= s.rules.MaxCoursesPerSemester
		if full {
			resp.OverloadedTAs = append(resp.OverloadedTAs, *l)
			continue
		}
		if l.HoursPerWeek+s.rules.DefaultHoursPerWeek <= s.rules.MaxHoursPerWeek {
			resp.AvailableTAs++
		}
	}
	sort.Slice(resp.OverloadedTAs, func(i, j int) bool {
		if resp.OverloadedTAs[i].HoursPerWeek != resp.OverloadedTAs[j].HoursPerWeek {
			return resp.OverloadedTAs[i].HoursPerWeek > resp.OverloadedTAs[j].HoursPerWeek
		}
		return resp.OverloadedTAs[i].Name < resp.OverloadedTAs[j].Name
	})

	return resp, nil
}
