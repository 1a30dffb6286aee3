package repository

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// EnrollmentRepository persists enrollments
type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	FindByID(ctx context.Context, id uint) (*model.Enrollment, error)
	Exists(ctx context.Context, userID, courseID uint) (bool, error)
	List(ctx context.Context, p PageRequest, userID *uint) (Page[model.Enrollment], error)
	Save(ctx context.Context, e *model.Enrollment) error
	Delete(ctx context.Context, id uint) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository returns the postgres implementation
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Course").Create(e).Error; err != nil {
		return duplicate(err, fmt.Sprintf("enrollment of user %d in course %d", e.UserID, e.CourseID))
	}
	return nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.db.WithContext(ctx).Preload("User").Preload("Course").First(&e, id).Error; err != nil {
		return nil, notFound(err, "enrollment", id)
	}
	return &e, nil
}

func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID uint) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *enrollmentRepository) List(ctx context.Context, p PageRequest, userID *uint) (Page[model.Enrollment], error) {
	p = p.Normalize()
	page := Page[model.Enrollment]{Page: p.Page, Limit: p.Limit}

	q := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	// new session so Count and Find do not share statement state
	q = q.Session(&gorm.Session{})
	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := q.Preload("User").Preload("Course").
		Order("enrollment_date DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&page.Items).Error
	return page, err
}

func (r *enrollmentRepository) Save(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Save(e).Error
}

func (r *enrollmentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Enrollment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("enrollment", id)
	}
	return nil
}
