package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"headta/backend/config"
	"headta/backend/internal/model"
	"headta/backend/internal/repository"
	"headta/backend/pkg/semester"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoAssignments = errors.New("no head TA assignments in this semester")
	ErrExportGenerateFail  = errors.New("failed to generate spreadsheet")
)

// ExportService 导出业务接口
//
//	Sheet "Assignments"：每条分配一行，工时缺省按默认值填充
//	Sheet "Totals"：每位 Head TA 的课程数与总工时
type ExportService interface {
	ExportAssignments(ctx context.Context, term semester.Semester) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	rules  config.AssignmentConfig
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, rules config.AssignmentConfig, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, rules: rules, logger: logger}
}

func (s *exportService) ExportAssignments(ctx context.Context, term semester.Semester) (*bytes.Buffer, string, error) {
	records, err := s.repo.TAAssignment.ListRecordsBySemester(ctx, repository.SemesterFilter{
		Year:   term.Year,
		Season: string(term.Season),
	})
	if err != nil {
		s.logger.Error("查询学期分配失败", zap.String("semester", term.Display), zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoAssignments
	}

	users, err := s.loadUsers(ctx, records)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: 明细 ──
	const detail = "Assignments"
	idx, _ := f.NewSheet(detail)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(detail, "A1", fmt.Sprintf("%s Head TA Assignments", term.Display))
	f.MergeCell(detail, "A1", "E1")
	f.SetCellStyle(detail, "A1", "A1", headerStyle)

	for i, h := range []string{"Course", "Title", "Head TA", "Email", "Hours/Week"} {
		f.SetCellValue(detail, cell(colName(i), 2), h)
	}
	f.SetCellStyle(detail, "A2", "E2", headerStyle)
	f.SetColWidth(detail, "A", "A", 12)
	f.SetColWidth(detail, "B", "B", 36)
	f.SetColWidth(detail, "C", "C", 24)
	f.SetColWidth(detail, "D", "D", 30)
	f.SetColWidth(detail, "E", "E", 12)

	type total struct {
		name    string
		courses int
		hours   int
	}
	totals := make(map[string]*total)

	row := 3
	for _, rec := range records {
		name, email := rec.UserID, ""
		if u, ok := users[rec.UserID]; ok {
			name, email = u.FullName(), u.Email
		}
		hours := hoursOrDefault(rec.HoursPerWeek, s.rules.DefaultHoursPerWeek)

		f.SetCellValue(detail, cell("A", row), rec.CourseNumber)
		f.SetCellValue(detail, cell("B", row), rec.CourseTitle)
		f.SetCellValue(detail, cell("C", row), name)
		f.SetCellValue(detail, cell("D", row), email)
		f.SetCellValue(detail, cell("E", row), hours)
		row++

		t, ok := totals[rec.UserID]
		if !ok {
			t = &total{name: name}
			totals[rec.UserID] = t
		}
		t.courses++
		t.hours += hours
	}

	// ── Sheet 2: 汇总 ──
	const summary = "Totals"
	f.NewSheet(summary)
	for i, h := range []string{"Head TA", "Courses", "Hours/Week"} {
		f.SetCellValue(summary, cell(colName(i), 1), h)
	}
	f.SetCellStyle(summary, "A1", "C1", headerStyle)
	f.SetColWidth(summary, "A", "A", 24)

	sorted := make([]*total, 0, len(totals))
	for _, t := range totals {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	for i, t := range sorted {
		f.SetCellValue(summary, cell("A", i+2), t.name)
		f.SetCellValue(summary, cell("B", i+2), t.courses)
		f.SetCellValue(summary, cell("C", i+2), t.hours)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("head_ta_assignments_%d_%s.xlsx", term.Year, term.Season)
	return buf, filename, nil
}

// loadUsers 分配记录涉及的用户，已删除用户以 ID 代替姓名
func (s *exportService) loadUsers(ctx context.Context, records []model.TAAssignmentRecord) (map[string]*model.User, error) {
	users := make(map[string]*model.User)
	for _, rec := range records {
		if _, ok := users[rec.UserID]; ok {
			continue
		}
		u, err := s.repo.User.GetByID(ctx, rec.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.logger.Error("查询用户失败", zap.String("user_id", rec.UserID), zap.Error(err))
			return nil, err
		}
		users[rec.UserID] = u
	}
	return users, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
