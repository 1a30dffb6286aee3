package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/services/queue"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
)

// CreateUserInput represents the request body for creating a user
type CreateUserInput struct {
	Name             string     `json:"name" validate:"required,min=2,max=255"`
	Email            string     `json:"email" validate:"required,email"`
	Password         string     `json:"password" validate:"required,min=8,max=72"`
	Phone            string     `json:"phone" validate:"omitempty,max=30"`
	Role             string     `json:"role" validate:"omitempty,oneof=student teacher admin super_admin editor"`
	Avatar           string     `json:"avatar" validate:"omitempty,max=500"`
	Status           string     `json:"status" validate:"omitempty,oneof=active inactive"`
	Biography        string     `json:"biography"`
	RegistrationDate *time.Time `json:"registration_date"`
}

// UpdateUserInput is a partial update. Changing the password requires OldPassword.
type UpdateUserInput struct {
	Name             *string    `json:"name" validate:"omitempty,min=2,max=255"`
	Email            *string    `json:"email" validate:"omitempty,email"`
	Password         *string    `json:"password" validate:"omitempty,min=8,max=72"`
	OldPassword      *string    `json:"old_password"`
	Phone            *string    `json:"phone" validate:"omitempty,max=30"`
	Role             *string    `json:"role" validate:"omitempty,oneof=student teacher admin super_admin editor"`
	Avatar           *string    `json:"avatar" validate:"omitempty,max=500"`
	Status           *string    `json:"status" validate:"omitempty,oneof=active inactive"`
	Biography        *string    `json:"biography"`
	RegistrationDate *time.Time `json:"registration_date"`
}

// UserService manages accounts
type UserService struct {
	users repository.UserRepository
	jobs  queue.Enqueuer
	bus   events.Publisher
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, jobs queue.Enqueuer, bus events.Publisher) *UserService {
	return &UserService{users: users, jobs: jobs, bus: bus}
}

func (s *UserService) checkEmail(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.users.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("user with email %s", repository.NormalizeEmail(email))
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if err := s.checkEmail(ctx, in.Email, 0); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Invalid("%v", err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Phone:        in.Phone,
		Role:         model.RoleStudent,
		Status:       model.UserStatusActive,
		Avatar:       in.Avatar,
		Biography:    in.Biography,
	}
	if in.Role != "" {
		user.Role = in.Role
	}
	if in.Status != "" {
		user.Status = in.Status
	}
	if in.RegistrationDate != nil {
		user.RegistrationDate = *in.RegistrationDate
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.enqueueWelcome(ctx, user)
	return user, nil
}

func (s *UserService) enqueueWelcome(ctx context.Context, user *model.User) {
	if s.jobs == nil {
		return
	}
	err := s.jobs.EnqueueWelcomeEmail(ctx, queue.WelcomeEmail{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		log.Printf("[QUEUE] failed to enqueue welcome email for user %d: %v", user.ID, err)
	}
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// List returns active users, optionally narrowed to one role
func (s *UserService) List(ctx context.Context, role string) ([]model.User, error) {
	if role != "" && !model.ValidRole(role) {
		return nil, apperror.Invalid("unknown role %q", role)
	}
	return s.users.ListActiveByRole(ctx, role)
}

func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousRole := user.Role

	if in.Email != nil && repository.NormalizeEmail(*in.Email) != user.Email {
		if err := s.checkEmail(ctx, *in.Email, id); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Password != nil {
		if err := s.changePassword(user, in.OldPassword, *in.Password); err != nil {
			return nil, err
		}
	}

	setString(&user.Name, in.Name)
	setString(&user.Phone, in.Phone)
	setString(&user.Role, in.Role)
	setString(&user.Avatar, in.Avatar)
	setString(&user.Status, in.Status)
	setString(&user.Biography, in.Biography)
	if in.RegistrationDate != nil {
		user.RegistrationDate = *in.RegistrationDate
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	if user.Role == model.RoleTeacher && previousRole != model.RoleTeacher {
		events.Emit(ctx, s.bus, events.UserUpdated{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
	}
	return user, nil
}

// changePassword verifies the old password, stores the new hash and
// invalidates every token issued before the change
func (s *UserService) changePassword(user *model.User, oldPassword *string, newPassword string) error {
	if oldPassword == nil || *oldPassword == "" {
		return apperror.Invalid("old_password is required to change the password")
	}
	if err := auth.VerifyPassword(user.PasswordHash, *oldPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.Invalid("old password is incorrect")
		}
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrInvalidArgument, err)
	}
	user.PasswordHash = hash
	user.TokenVersion++
	return nil
}

func (s *UserService) Remove(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}
