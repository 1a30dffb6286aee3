package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
)

// PaymentInput records money received for a course
type PaymentInput struct {
	TransactionID  string  `json:"transaction_id" validate:"omitempty,max=100"`
	UserID         uint    `json:"user_id" validate:"required,min=1"`
	CourseID       uint    `json:"course_id" validate:"required,min=1"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	DiscountAmount float64 `json:"discount_amount" validate:"min=0"`
	Status         string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Method         string  `json:"method" validate:"omitempty,max=50"`
}

// PaymentService stores the payments revenue figures are computed from
type PaymentService struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
	courses  repository.CourseRepository
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments repository.PaymentRepository, users repository.UserRepository, courses repository.CourseRepository) *PaymentService {
	return &PaymentService{payments: payments, users: users, courses: courses}
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*model.Payment, error) {
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, in.CourseID); err != nil {
		return nil, err
	}

	p := &model.Payment{
		TransactionID:  in.TransactionID,
		UserID:         in.UserID,
		CourseID:       in.CourseID,
		Amount:         in.Amount,
		DiscountAmount: in.DiscountAmount,
		Status:         model.PaymentStatusPending,
		Method:         in.Method,
	}
	if p.TransactionID == "" {
		p.TransactionID = uuid.NewString()
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, p repository.PageRequest, courseID *uint) (repository.Page[model.Payment], error) {
	return s.payments.List(ctx, p.Normalize(), courseID)
}
