package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"gorm.io/gorm"
)

// FileRepository persists upload metadata
type FileRepository interface {
	Create(ctx context.Context, f *model.File) error
	FindByID(ctx context.Context, id uint) (*model.File, error)
	ListByEntity(ctx context.Context, entityType string, entityID *uint) ([]model.File, error)
	Delete(ctx context.Context, id uint) error
}

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository returns the postgres implementation
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Omit("UploadedBy").Create(f).Error
}

func (r *fileRepository) FindByID(ctx context.Context, id uint) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, notFound(err, "file", id)
	}
	return &f, nil
}

func (r *fileRepository) ListByEntity(ctx context.Context, entityType string, entityID *uint) ([]model.File, error) {
	q := r.db.WithContext(ctx).Order("uploaded_at DESC")
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if entityID != nil {
		q = q.Where("entity_id = ?", *entityID)
	}
	var files []model.File
	err := q.Find(&files).Error
	return files, err
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.File{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("file", id)
	}
	return nil
}
