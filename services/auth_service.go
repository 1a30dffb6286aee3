package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/queue"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
)

// RegisterInput represents a self-service registration request
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

// LoginInput represents a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is what register, login and refresh return to the client
type Session struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
}

// ClientInfo is recorded with account activity
type ClientInfo struct {
	IP        string
	UserAgent string
}

// TokenRevoker blacklists access tokens before they expire
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", apperror.ErrUnauthorized)

// AuthService issues and rotates token pairs
type AuthService struct {
	users    repository.UserRepository
	refresh  repository.RefreshTokenRepository
	activity repository.ActivityRepository
	jwt      *auth.JWTManager
	revoker  TokenRevoker
	jobs     queue.Enqueuer
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repository.UserRepository,
	refresh repository.RefreshTokenRepository,
	activity repository.ActivityRepository,
	jwt *auth.JWTManager,
	revoker TokenRevoker,
	jobs queue.Enqueuer,
) *AuthService {
	return &AuthService{
		users:    users,
		refresh:  refresh,
		activity: activity,
		jwt:      jwt,
		revoker:  revoker,
		jobs:     jobs,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*Session, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("user with email %s", repository.NormalizeEmail(in.Email))
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
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.jobs != nil {
		job := queue.WelcomeEmail{UserID: user.ID, Email: user.Email, Name: user.Name}
		if err := s.jobs.EnqueueWelcomeEmail(ctx, job); err != nil {
			log.Printf("[QUEUE] failed to enqueue welcome email for user %d: %v", user.ID, err)
		}
	}

	s.record(ctx, user.ID, model.ActivityTypeRegister, client)
	return s.issue(ctx, user)
}

// Login verifies credentials. Wrong email and wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput, client ClientInfo) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := auth.VerifyPassword(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if user.Status == model.UserStatusInactive {
		return nil, fmt.Errorf("%w: account is inactive", apperror.ErrForbidden)
	}

	s.record(ctx, user.ID, model.ActivityTypeLogin, client)
	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked in the same step, so it can be used once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwt.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", apperror.ErrUnauthorized)
	}

	stored, err := s.refresh.FindByTokenID(ctx, claims.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, fmt.Errorf("%w: unknown refresh token", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	if stored.UserID != claims.UserID || !stored.Usable(s.now()) {
		return nil, fmt.Errorf("%w: refresh token has been revoked", apperror.ErrUnauthorized)
	}

	revoked, err := s.refresh.Revoke(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		return nil, fmt.Errorf("%w: refresh token has been revoked", apperror.ErrUnauthorized)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user not found", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, fmt.Errorf("%w: token has been invalidated", apperror.ErrUnauthorized)
	}
	if user.Status == model.UserStatusInactive {
		return nil, fmt.Errorf("%w: account is inactive", apperror.ErrForbidden)
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token (when given) and blacklists the access token
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string, client ClientInfo) error {
	if refreshToken != "" {
		rc, err := s.jwt.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
		if err == nil && rc.UserID == claims.UserID {
			if _, err := s.refresh.Revoke(ctx, rc.ID); err != nil {
				return err
			}
		}
	}

	expiresAt := s.now().Add(s.jwt.AccessTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revoker.RevokeToken(ctx, claims.ID, claims.UserID, expiresAt, "logout"); err != nil {
		return err
	}

	s.record(ctx, claims.UserID, model.ActivityTypeLogout, client)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*Session, error) {
	pair, err := s.jwt.IssuePair(auth.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	row := &model.RefreshToken{
		ID:        uuid.New(),
		TokenID:   pair.Refresh.ID,
		UserID:    user.ID,
		ExpiresAt: pair.Refresh.ExpiresAt,
	}
	if err := s.refresh.Create(ctx, row); err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
		ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
	}, nil
}

// record writes an audit entry; failures are logged only
func (s *AuthService) record(ctx context.Context, userID uint, kind model.ActivityType, client ClientInfo) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, &model.UserActivity{
		UserID:       userID,
		ActivityType: kind,
		IPAddress:    client.IP,
		UserAgent:    client.UserAgent,
	})
	if err != nil {
		log.Printf("[AUTH] failed to record %s for user %d: %v", kind, userID, err)
	}
}
