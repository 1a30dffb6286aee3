package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/services"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/middleware"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	auth                 *services.AuthService
	users                *services.UserService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(auth *services.AuthService, users *services.UserService, bruteForce *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		auth:                 auth,
		users:                users,
		bruteForceProtection: bruteForce,
	}
}

// RefreshRequest carries the refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the session
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ProfileRequest is the subset of user fields a user may change on their own account
type ProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Avatar      *string `json:"avatar" validate:"omitempty,max=500"`
	Biography   *string `json:"biography"`
	Password    *string `json:"password" validate:"omitempty,min=8,max=72"`
	OldPassword *string `json:"old_password"`
}

func clientInfo(c *fiber.Ctx) services.ClientInfo {
	return services.ClientInfo{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), req, clientInfo(c))
	if err != nil {
		return err
	}
	return response.Created(c, session)
}

// Login handles POST /auth/login. Failed attempts count towards the IP lockout.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req, clientInfo(c))
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			h.bruteForceProtection.RecordFailure(c.UserContext(), c.IP())
		}
		return err
	}

	h.bruteForceProtection.RecordSuccess(c.UserContext(), c.IP())
	return response.Success(c, session)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	session, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return response.Success(c, session)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req LogoutRequest
	if len(c.Body()) > 0 {
		if err := validation.ParseBody(c, &req); err != nil {
			return err
		}
	}

	if err := h.auth.Logout(c.UserContext(), claims, req.RefreshToken, clientInfo(c)); err != nil {
		return err
	}
	return response.SuccessWithMessage(c, "Logged out successfully", nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	user, err := h.auth.Me(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, user)
}

// UpdateProfile handles PATCH /auth/me
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req ProfileRequest
	if err := validation.ParseBody(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), userID, services.UpdateUserInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Avatar:      req.Avatar,
		Biography:   req.Biography,
		Password:    req.Password,
		OldPassword: req.OldPassword,
	})
	if err != nil {
		return err
	}
	return response.Success(c, user)
}
