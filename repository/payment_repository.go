package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"gorm.io/gorm"
)

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	List(ctx context.Context, p PageRequest, courseID *uint) (Page[model.Payment], error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository returns the postgres implementation
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Course").Create(p).Error; err != nil {
		return duplicate(err, "transaction "+p.TransactionID)
	}
	return nil
}

func (r *paymentRepository) List(ctx context.Context, p PageRequest, courseID *uint) (Page[model.Payment], error) {
	p = p.Normalize()
	page := Page[model.Payment]{Page: p.Page, Limit: p.Limit}

	q := r.db.WithContext(ctx).Model(&model.Payment{})
	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := q.Preload("Course").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&page.Items).Error
	return page, err
}
