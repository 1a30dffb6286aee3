package services

import (
	"context"
	"log"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/services/queue"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
)

// CreateEnrollmentInput represents the request body for enrolling a user
type CreateEnrollmentInput struct {
	UserID               uint     `json:"user_id" validate:"required,min=1"`
	CourseID             uint     `json:"course_id" validate:"required,min=1"`
	Status               string   `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	CompletionPercentage *float64 `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
}

// UpdateEnrollmentInput is a partial update
type UpdateEnrollmentInput struct {
	Status               *string  `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	CompletionPercentage *float64 `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
}

// EnrollmentService tracks who takes which course and how far they got
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	users       repository.UserRepository
	courses     repository.CourseRepository
	jobs        queue.Enqueuer
	bus         events.Publisher
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	jobs queue.Enqueuer,
	bus events.Publisher,
) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, users: users, courses: courses, jobs: jobs, bus: bus}
}

func checkPercentage(p *float64) error {
	if p != nil && (*p < 0 || *p > 100) {
		return apperror.Invalid("completion_percentage must be between 0 and 100")
	}
	return nil
}

func (s *EnrollmentService) Create(ctx context.Context, in CreateEnrollmentInput) (*model.Enrollment, error) {
	if err := checkPercentage(in.CompletionPercentage); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.Exists(ctx, in.UserID, in.CourseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, apperror.Conflict("user %d is already enrolled in course %d", in.UserID, in.CourseID)
	}

	e := &model.Enrollment{
		UserID:   in.UserID,
		CourseID: in.CourseID,
		Status:   model.EnrollmentStatusActive,
	}
	if in.Status != "" {
		e.Status = in.Status
	}
	if in.CompletionPercentage != nil {
		e.CompletionPercentage = *in.CompletionPercentage
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.bus, events.CourseEnrolled{
		EnrollmentID: e.ID,
		UserID:       user.ID,
		CourseID:     course.ID,
		CourseName:   course.Name,
	})
	if s.jobs != nil {
		err := s.jobs.EnqueueEnrollmentEmail(ctx, queue.EnrollmentEmail{
			UserID:     user.ID,
			Email:      user.Email,
			Name:       user.Name,
			CourseID:   course.ID,
			CourseName: course.Name,
		})
		if err != nil {
			log.Printf("[QUEUE] failed to enqueue enrollment email for enrollment %d: %v", e.ID, err)
		}
	}
	return e, nil
}

func (s *EnrollmentService) Update(ctx context.Context, id uint, in UpdateEnrollmentInput) (*model.Enrollment, error) {
	if err := checkPercentage(in.CompletionPercentage); err != nil {
		return nil, err
	}
	e, err := s.enrollments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasCompleted := e.Status == model.EnrollmentStatusCompleted

	setString(&e.Status, in.Status)
	if in.CompletionPercentage != nil {
		e.CompletionPercentage = *in.CompletionPercentage
	}
	e.User, e.Course = nil, nil

	if err := s.enrollments.Save(ctx, e); err != nil {
		return nil, err
	}

	if e.Status == model.EnrollmentStatusCompleted && !wasCompleted {
		completed := events.CourseCompleted{EnrollmentID: e.ID, UserID: e.UserID, CourseID: e.CourseID}
		if course, err := s.courses.FindByID(ctx, e.CourseID); err == nil {
			completed.CourseName = course.Name
		}
		events.Emit(ctx, s.bus, completed)
	}
	return e, nil
}

func (s *EnrollmentService) Get(ctx context.Context, id uint) (*model.Enrollment, error) {
	return s.enrollments.FindByID(ctx, id)
}

func (s *EnrollmentService) List(ctx context.Context, p repository.PageRequest, userID *uint) (repository.Page[model.Enrollment], error) {
	return s.enrollments.List(ctx, p.Normalize(), userID)
}

func (s *EnrollmentService) Remove(ctx context.Context, id uint) error {
	return s.enrollments.Delete(ctx, id)
}
