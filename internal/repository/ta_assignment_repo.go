package repository

import (
	"context"

	"gorm.io/gorm"

	"headta/backend/internal/model"
	pkgerrors "headta/backend/pkg/errors"
)

// TAAssignmentRepository Head TA 分配数据访问接口
type TAAssignmentRepository interface {
	Create(ctx context.Context, a *model.TAAssignment) error
	GetByID(ctx context.Context, id string) (*model.TAAssignment, error)
	GetByUserAndOffering(ctx context.Context, userID, courseOfferingID string) (*model.TAAssignment, error)
	// ListRecordsByUser 返回用户的分配记录（含课程与学期信息）；filter 为 nil 时不限学期
	ListRecordsByUser(ctx context.Context, userID string, filter *SemesterFilter) ([]model.TAAssignmentRecord, error)
	// ListRecordsByUserAndCourse 返回用户在同一门课（任意学期）的分配记录
	ListRecordsByUserAndCourse(ctx context.Context, userID, courseID string) ([]model.TAAssignmentRecord, error)
	ListRecordsBySemester(ctx context.Context, filter SemesterFilter) ([]model.TAAssignmentRecord, error)
	// ListByCourseOffering 预加载 User
	ListByCourseOffering(ctx context.Context, courseOfferingID string) ([]model.TAAssignment, error)
	UpdateHours(ctx context.Context, a *model.TAAssignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type taAssignmentRepo struct {
	db *gorm.DB
}

// NewTAAssignmentRepo 创建 TAAssignmentRepository 实例
func NewTAAssignmentRepo(db *gorm.DB) TAAssignmentRepository {
	return &taAssignmentRepo{db: db}
}

const recordColumns = `ta_assignments.assignment_id, ta_assignments.user_id, ta_assignments.course_offering_id,
	course_offerings.course_id, ta_assignments.hours_per_week,
	courses.course_number, courses.title AS course_title,
	course_offerings.semester, course_offerings.year, course_offerings.season`

// records 分配 ⋈ 开课 ⋈ 课程 的基础查询，排除已软删除的开课
func (r *taAssignmentRepo) records(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.TAAssignment{}).
		Select(recordColumns).
		Joins("JOIN course_offerings ON course_offerings.course_offering_id = ta_assignments.course_offering_id AND course_offerings.deleted_at IS NULL").
		Joins("JOIN courses ON courses.course_id = course_offerings.course_id")
}

func (r *taAssignmentRepo) Create(ctx context.Context, a *model.TAAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *taAssignmentRepo) GetByID(ctx context.Context, id string) (*model.TAAssignment, error) {
	var a model.TAAssignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *taAssignmentRepo) GetByUserAndOffering(ctx context.Context, userID, courseOfferingID string) (*model.TAAssignment, error) {
	var a model.TAAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_offering_id = ?", userID, courseOfferingID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *taAssignmentRepo) ListRecordsByUser(ctx context.Context, userID string, filter *SemesterFilter) ([]model.TAAssignmentRecord, error) {
	q := r.records(ctx).Where("ta_assignments.user_id = ?", userID)
	if filter != nil {
		q = q.Where("course_offerings.year = ? AND course_offerings.season = ?", filter.Year, filter.Season)
	}
	var out []model.TAAssignmentRecord
	err := q.Order("course_offerings.year ASC, courses.course_number ASC").Scan(&out).Error
	return out, err
}

func (r *taAssignmentRepo) ListRecordsByUserAndCourse(ctx context.Context, userID, courseID string) ([]model.TAAssignmentRecord, error) {
	var out []model.TAAssignmentRecord
	err := r.records(ctx).
		Where("ta_assignments.user_id = ? AND course_offerings.course_id = ?", userID, courseID).
		Order("course_offerings.year ASC").
		Scan(&out).Error
	return out, err
}

func (r *taAssignmentRepo) ListRecordsBySemester(ctx context.Context, filter SemesterFilter) ([]model.TAAssignmentRecord, error) {
	var out []model.TAAssignmentRecord
	err := r.records(ctx).
		Where("course_offerings.year = ? AND course_offerings.season = ?", filter.Year, filter.Season).
		Order("courses.course_number ASC, ta_assignments.user_id ASC").
		Scan(&out).Error
	return out, err
}

func (r *taAssignmentRepo) ListByCourseOffering(ctx context.Context, courseOfferingID string) ([]model.TAAssignment, error) {
	var list []model.TAAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("course_offering_id = ?", courseOfferingID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// UpdateHours 乐观锁更新工时
func (r *taAssignmentRepo) UpdateHours(ctx context.Context, a *model.TAAssignment) error {
	oldVersion := a.Version
	result := r.db.WithContext(ctx).
		Model(&model.TAAssignment{}).
		Where("assignment_id = ? AND version = ?", a.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"hours_per_week": a.HoursPerWeek,
			"updated_by":     a.UpdatedBy,
			"updated_at":     gorm.Expr("NOW()"),
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version = oldVersion + 1
	return nil
}

func (r *taAssignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.TAAssignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
