package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// LessonRepository persists lessons
type LessonRepository interface {
	Create(ctx context.Context, l *model.Lesson) error
	FindByID(ctx context.Context, id uint) (*model.Lesson, error)
	ListByCourse(ctx context.Context, courseID *uint) ([]model.Lesson, error)
	Save(ctx context.Context, l *model.Lesson) error
	Delete(ctx context.Context, id uint) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository returns the postgres implementation
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(ctx context.Context, l *model.Lesson) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *lessonRepository) FindByID(ctx context.Context, id uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, notFound(err, "lesson", id)
	}
	return &l, nil
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID *uint) ([]model.Lesson, error) {
	q := r.db.WithContext(ctx).Order("course_id ASC").Order("sort_order ASC").Order("id ASC")
	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	}
	var lessons []model.Lesson
	err := q.Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) Save(ctx context.Context, l *model.Lesson) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *lessonRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Lesson{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("lesson", id)
	}
	return nil
}
