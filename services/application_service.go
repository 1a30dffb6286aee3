package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
)

// CreateApplicationInput is submitted by parents from the public site
type CreateApplicationInput struct {
	ChildName   string     `json:"child_name" validate:"required,max=255"`
	Age         int        `json:"age" validate:"omitempty,min=1,max=99"`
	ParentPhone string     `json:"parent_phone" validate:"required,max=30"`
	ParentEmail *string    `json:"parent_email" validate:"omitempty,email"`
	CourseID    *uint      `json:"course_id" validate:"omitempty,min=1"`
	GroupID     *uint      `json:"group_id" validate:"omitempty,min=1"`
	Date        *time.Time `json:"date"`
	Photo       string     `json:"photo" validate:"omitempty,max=500"`
	Message     string     `json:"message" validate:"omitempty,max=2000"`
}

// UpdateApplicationInput is a partial update made by staff
type UpdateApplicationInput struct {
	ChildName   *string             `json:"child_name" validate:"omitempty,max=255"`
	Age         *int                `json:"age" validate:"omitempty,min=1,max=99"`
	ParentPhone *string             `json:"parent_phone" validate:"omitempty,max=30"`
	ParentEmail Optional[string]    `json:"parent_email"`
	CourseID    Optional[uint]      `json:"course_id"`
	GroupID     Optional[uint]      `json:"group_id"`
	Date        Optional[time.Time] `json:"date"`
	Status      *string             `json:"status" validate:"omitempty,oneof=new confirmed rejected"`
	Photo       *string             `json:"photo" validate:"omitempty,max=500"`
	Message     *string             `json:"message" validate:"omitempty,max=2000"`
}

// ApplicationService processes inbound applications into students and group seats
type ApplicationService struct {
	apps    repository.ApplicationRepository
	users   repository.UserRepository
	groups  repository.GroupRepository
	courses CourseInvalidator
	bus     events.Publisher
	now     func() time.Time
}

// NewApplicationService creates a new application service. courses may be nil.
func NewApplicationService(
	apps repository.ApplicationRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	courses CourseInvalidator,
	bus events.Publisher,
) *ApplicationService {
	return &ApplicationService{apps: apps, users: users, groups: groups, courses: courses, bus: bus, now: time.Now}
}

func (s *ApplicationService) Create(ctx context.Context, in CreateApplicationInput) (*model.Application, error) {
	app := &model.Application{
		ChildName:   strings.TrimSpace(in.ChildName),
		Age:         in.Age,
		ParentPhone: strings.TrimSpace(in.ParentPhone),
		ParentEmail: in.ParentEmail,
		CourseID:    in.CourseID,
		GroupID:     in.GroupID,
		Date:        in.Date,
		Status:      model.ApplicationStatusNew,
		Photo:       in.Photo,
		Message:     in.Message,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uint) (*model.Application, error) {
	return s.apps.FindByID(ctx, id)
}

func (s *ApplicationService) List(ctx context.Context, p repository.PageRequest, status string) (repository.Page[model.Application], error) {
	return s.apps.List(ctx, p.Normalize(), status)
}

func (s *ApplicationService) Remove(ctx context.Context, id uint) error {
	return s.apps.Delete(ctx, id)
}

// Update merges the changes into the application. Entering "confirmed", or
// changing the group of an already confirmed application, links a student
// account, seats it in the group and publishes one ApplicationStatus event.
func (s *ApplicationService) Update(ctx context.Context, adminID *uint, id uint, in UpdateApplicationInput) (*model.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *app

	if in.ChildName != nil {
		app.ChildName = strings.TrimSpace(*in.ChildName)
	}
	if in.Age != nil {
		app.Age = *in.Age
	}
	if in.ParentPhone != nil {
		app.ParentPhone = strings.TrimSpace(*in.ParentPhone)
	}
	in.ParentEmail.apply(&app.ParentEmail)
	in.CourseID.apply(&app.CourseID)
	in.GroupID.apply(&app.GroupID)
	in.Date.apply(&app.Date)
	if in.Photo != nil {
		app.Photo = *in.Photo
	}
	if in.Message != nil {
		app.Message = *in.Message
	}
	if in.Status != nil {
		app.Status = *in.Status
	}

	groupChanged := !sameUint(before.GroupID, app.GroupID)
	enteringConfirmed := app.IsConfirmed() && !before.IsConfirmed()
	if !app.IsConfirmed() || (!enteringConfirmed && !groupChanged) {
		if err := s.apps.Save(ctx, app); err != nil {
			return nil, err
		}
		return app, nil
	}

	if app.UserID == nil {
		user, err := s.resolveStudent(ctx, app)
		if err != nil {
			return nil, err
		}
		// link the account before seating so a failed seat does not orphan it
		linked := before
		linked.UserID = &user.ID
		if err := s.apps.Save(ctx, &linked); err != nil {
			return nil, err
		}
		app.UserID = &user.ID
	}

	if app.GroupID != nil {
		err := s.groups.ReplaceApplicationMember(ctx, app.ID, repository.Membership{
			GroupID:   *app.GroupID,
			StudentID: *app.UserID,
		})
		if err != nil {
			return nil, err
		}
		s.dropCourseViews(ctx, before.GroupID, app.GroupID)
	}

	if err := s.apps.Save(ctx, app); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.bus, events.ApplicationStatus{
		AdminID:       adminID,
		ApplicationID: app.ID,
		ChildName:     app.ChildName,
		Status:        app.Status,
		UserID:        app.UserID,
		GroupID:       app.GroupID,
		CourseID:      app.CourseID,
	})
	return app, nil
}

// dropCourseViews clears cached courses whose groups just gained or lost a seat
func (s *ApplicationService) dropCourseViews(ctx context.Context, groupIDs ...*uint) {
	if s.courses == nil {
		return
	}
	seen := make(map[uint]bool, len(groupIDs))
	for _, id := range groupIDs {
		if id == nil {
			continue
		}
		g, err := s.groups.FindByID(ctx, *id)
		if err != nil || seen[g.CourseID] {
			continue
		}
		seen[g.CourseID] = true
		s.courses.InvalidateCourse(ctx, g.CourseID)
	}
}

// resolveStudent finds the account behind parentEmail or creates a student with a placeholder password
func (s *ApplicationService) resolveStudent(ctx context.Context, app *model.Application) (*model.User, error) {
	email := ""
	if app.ParentEmail != nil {
		email = repository.NormalizeEmail(*app.ParentEmail)
	}

	if email != "" {
		user, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			if user.Role != model.RoleStudent {
				return nil, fmt.Errorf("%w: %s belongs to a %s account, only students can be seated",
					apperror.ErrInvalidState, email, user.Role)
			}
			return user, nil
		}
		if !apperror.IsNotFound(err) {
			return nil, err
		}
	} else {
		email = fmt.Sprintf("user_%d@placeholder.local", s.now().UnixNano())
	}

	hash, err := auth.HashPassword(auth.PlaceholderPassword())
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         app.ChildName,
		Phone:        app.ParentPhone,
		Role:         model.RoleStudent,
		Status:       model.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[APPLICATIONS] created student %d for application %d", user.ID, app.ID)
	return user, nil
}
