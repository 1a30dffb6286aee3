package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// ApplicationRepository persists applications
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id uint) (*model.Application, error)
	List(ctx context.Context, p PageRequest, status string) (Page[model.Application], error)
	Save(ctx context.Context, app *model.Application) error
	Delete(ctx context.Context, id uint) error
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns the postgres implementation
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("Course", "Group", "User").Create(app).Error
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*model.Application, error) {
	var a model.Application
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Group").
		First(&a, id).Error
	if err != nil {
		return nil, notFound(err, "application", id)
	}
	return &a, nil
}

func (r *applicationRepository) List(ctx context.Context, p PageRequest, status string) (Page[model.Application], error) {
	p = p.Normalize()
	page := Page[model.Application]{Page: p.Page, Limit: p.Limit}

	q := r.db.WithContext(ctx).Model(&model.Application{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	// new session so Count and Find do not share statement state
	q = q.Session(&gorm.Session{})
	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := q.Preload("Course").
		Preload("Group").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&page.Items).Error
	return page, err
}

func (r *applicationRepository) Save(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Omit("Course", "Group", "User").Save(app).Error
}

func (r *applicationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Application{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("application", id)
	}
	return nil
}
