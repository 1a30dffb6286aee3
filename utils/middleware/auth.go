package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
)

// UserLoader loads the account behind a token
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// RevocationChecker reports whether an access token ID was revoked
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      UserLoader
	revoked    RevocationChecker
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, users UserLoader, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
		revoked:    revoked,
	}
}

// authFailure is a client-side authentication failure; its text is sent back as is
type authFailure string

func (f authFailure) Error() string { return string(f) }

const (
	errMissingToken authFailure = "Missing authorization token"
	errTokenFormat  authFailure = "Invalid authorization format"
	errTokenExpired authFailure = "Token has expired"
	errTokenInvalid authFailure = "Invalid token"
	errTokenRevoked authFailure = "Token has been revoked"
	errTokenStale   authFailure = "Token has been invalidated"
	errUserGone     authFailure = "User not found"
	errUserInactive authFailure = "Account is inactive"
)

// authenticate resolves the bearer token into claims and the current user.
// Any error that is not an authFailure is internal.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*auth.Claims, *model.User, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, nil, errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, errTokenFormat
	}

	claims, err := m.jwtManager.ValidateTyped(parts[1], auth.TokenTypeAccess)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, nil, errTokenExpired
		}
		return nil, nil, errTokenInvalid
	}

	ctx := c.UserContext()
	isRevoked, err := m.revoked.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if isRevoked {
		return nil, nil, errTokenRevoked
	}

	user, err := m.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, errUserGone
		}
		return nil, nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, errTokenStale
	}
	if user.Status == model.UserStatusInactive {
		return nil, nil, errUserInactive
	}
	return claims, user, nil
}

func storeIdentity(c *fiber.Ctx, claims *auth.Claims, user *model.User) {
	c.Locals("user_id", user.ID)
	c.Locals("user_email", user.Email)
	c.Locals("user_role", user.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := m.authenticate(c)
		if err != nil {
			if failure, ok := err.(authFailure); ok {
				return response.Unauthorized(c, failure.Error())
			}
			return err
		}
		storeIdentity(c, claims, user)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := m.authenticate(c)
		if err == nil {
			storeIdentity(c, claims, user)
		}
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given roles.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return RequireRole(roles...)
}

// RequireRole lets the request through when the authenticated role is in roles
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role, ok := GetUserRole(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}
		if _, ok := allowed[role]; !ok {
			return response.Forbidden(c, "Insufficient permissions")
		}
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (string, bool) {
	r, ok := c.Locals("user_role").(string)
	return r, ok
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals("user").(*model.User)
	return u, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals("claims").(*auth.Claims)
	return claims, ok
}

// GetTokenJTI returns the ID of the access token that authenticated the request
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti, ok := c.Locals("token_jti").(string)
	return jti, ok
}
