package repository

import (
	"context"
	"fmt"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// CategoryRepository persists categories
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	ListWithStats(ctx context.Context, onlyActive bool) ([]model.CategoryStats, error)
	Save(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns the postgres implementation
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Omit("Courses").Create(category).Error; err != nil {
		return duplicate(err, fmt.Sprintf("category name %q", category.Name))
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (r *categoryRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return exists(q)
}

// ListWithStats computes, per category, the number of courses and the number
// of distinct students holding an active enrollment in one of them
func (r *categoryRepository) ListWithStats(ctx context.Context, onlyActive bool) ([]model.CategoryStats, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select(`categories.*,
			(SELECT COUNT(*) FROM courses c WHERE c.category_id = categories.id) AS courses_count,
			(SELECT COUNT(DISTINCT u.id)
				FROM courses c
				JOIN enrollments e ON e.course_id = c.id
				JOIN users u ON u.id = e.user_id
				WHERE c.category_id = categories.id
				AND u.role = ? AND e.status = ?) AS student_count`,
			model.RoleStudent, model.EnrollmentStatusActive).
		Order("categories.name ASC")
	if onlyActive {
		q = q.Where("categories.status = ?", "active")
	}
	var rows []model.CategoryStats
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *categoryRepository) Save(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Omit("Courses").Save(category).Error; err != nil {
		return duplicate(err, fmt.Sprintf("category name %q", category.Name))
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("category", id)
	}
	return nil
}
