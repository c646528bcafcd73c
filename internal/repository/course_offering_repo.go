package repository

import (
	"context"

	"gorm.io/gorm"

	"headta/backend/internal/model"
)

// CourseOfferingRepository 开课数据访问接口
type CourseOfferingRepository interface {
	Create(ctx context.Context, offering *model.CourseOffering) error
	// GetByID 预加载 Course 与 Professor
	GetByID(ctx context.Context, id string) (*model.CourseOffering, error)
	GetByCourseAndSemester(ctx context.Context, courseID string, year int, season string) (*model.CourseOffering, error)
	// List filter 为 nil 时返回全部开课，按学年倒序
	List(ctx context.Context, filter *SemesterFilter) ([]model.CourseOffering, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type courseOfferingRepo struct {
	db *gorm.DB
}

// NewCourseOfferingRepo 创建 CourseOfferingRepository 实例
func NewCourseOfferingRepo(db *gorm.DB) CourseOfferingRepository {
	return &courseOfferingRepo{db: db}
}

func (r *courseOfferingRepo) Create(ctx context.Context, offering *model.CourseOffering) error {
	return r.db.WithContext(ctx).Create(offering).Error
}

func (r *courseOfferingRepo) GetByID(ctx context.Context, id string) (*model.CourseOffering, error) {
	var o model.CourseOffering
	err := r.db.WithContext(ctx).
		Preload("Course").Preload("Professor").
		Where("course_offering_id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *courseOfferingRepo) GetByCourseAndSemester(ctx context.Context, courseID string, year int, season string) (*model.CourseOffering, error) {
	var o model.CourseOffering
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND year = ? AND season = ?", courseID, year, season).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *courseOfferingRepo) List(ctx context.Context, filter *SemesterFilter) ([]model.CourseOffering, error) {
	var offerings []model.CourseOffering
	q := r.db.WithContext(ctx).
		Preload("Course").Preload("Professor")
	if filter != nil {
		q = q.Where("year = ? AND season = ?", filter.Year, filter.Season)
	}
	err := q.
		Order("year DESC").
		Order("CASE season WHEN 'fall' THEN 2 WHEN 'summer' THEN 1 ELSE 0 END DESC").
		Order("course_offering_id ASC").
		Find(&offerings).Error
	return offerings, err
}

func (r *courseOfferingRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.CourseOffering{}).
		Where("course_offering_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
