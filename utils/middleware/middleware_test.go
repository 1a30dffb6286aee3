package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
	"github.com/sahilchouksey/edu-platform-api/utils/response"
	"github.com/sahilchouksey/edu-platform-api/utils/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

type fakeRevocations map[string]bool

func (f fakeRevocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func decodeError(t *testing.T, resp *http.Response) response.ErrorBody {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestErrorHandlerShapes(t *testing.T) {
	app := newApp()
	app.Get("/not-found", func(c *fiber.Ctx) error { return apperror.NotFound("group", 4) })
	app.Get("/full", func(c *fiber.Ctx) error { return fmt.Errorf("%w: group 1", apperror.ErrCapacityExceeded) })
	app.Get("/dup", func(c *fiber.Ctx) error { return apperror.Conflict("title taken") })
	app.Get("/gorm", func(c *fiber.Ctx) error { return gorm.ErrRecordNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return fmt.Errorf("driver exploded") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return validation.ValidateStruct(struct {
			Name string `json:"name" validate:"required"`
		}{})
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/not-found", 404, "not found: group with id 4"},
		{"/full", 400, "capacity exceeded: group 1"},
		{"/dup", 409, "already exists: title taken"},
		{"/gorm", 404, "Resource not found"},
		{"/boom", 500, "Internal server error"},
		{"/fiber", 418, "short and stout"},
		{"/invalid", 400, "name is required"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tc.path+"?x=1", nil))
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)

		body := decodeError(t, resp)
		assert.Equal(t, tc.status, body.StatusCode)
		assert.Equal(t, tc.message, body.Message)
		assert.Equal(t, tc.path+"?x=1", body.Path)
		assert.Equal(t, http.StatusText(tc.status), body.Error)
		_, err = time.Parse(time.RFC3339Nano, body.Timestamp)
		assert.NoError(t, err)
	}
}

func TestRequireRole(t *testing.T) {
	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		if r := c.Get("X-Role"); r != "" {
			c.Locals("user_role", r)
		}
		return c.Next()
	})
	app.Get("/admin", RequireRole(model.RoleAdmin, model.RoleSuperAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	for role, want := range map[string]int{"admin": 200, "super_admin": 200, "student": 403, "": 403} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-Role", role)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

func TestRequired(t *testing.T) {
	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "s", Expiry: time.Hour, RefreshExpiry: 2 * time.Hour})
	users := fakeUsers{
		1: {ID: 1, Email: "a@x.io", Role: model.RoleStudent, Status: model.UserStatusActive, TokenVersion: 0},
		2: {ID: 2, Email: "b@x.io", Role: model.RoleStudent, Status: model.UserStatusActive, TokenVersion: 5},
	}
	revoked := fakeRevocations{}
	mw := NewAuthMiddleware(jwtManager, users, revoked)

	app := newApp()
	app.Get("/me", mw.Required(), func(c *fiber.Ctx) error {
		id, _ := GetUserID(c)
		return c.SendString(fmt.Sprint(id))
	})

	issue := func(id uint, version int) *auth.TokenPair {
		pair, err := jwtManager.IssuePair(auth.Subject{UserID: id, TokenVersion: version})
		require.NoError(t, err)
		return pair
	}
	call := func(header string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(raw)
	}

	good := issue(1, 0)
	status, body := call("Bearer " + good.Access.Token)
	assert.Equal(t, 200, status)
	assert.Equal(t, "1", body)

	status, _ = call("")
	assert.Equal(t, 401, status)

	status, _ = call("Bearer " + good.Refresh.Token)
	assert.Equal(t, 401, status, "refresh token must not authenticate")

	status, _ = call("Bearer " + issue(2, 4).Access.Token)
	assert.Equal(t, 401, status, "stale token version")

	status, _ = call("Bearer " + issue(99, 0).Access.Token)
	assert.Equal(t, 401, status, "unknown user")

	revoked[good.Access.ID] = true
	status, body = call("Bearer " + good.Access.Token)
	assert.Equal(t, 401, status)
	assert.Contains(t, body, "revoked")
}

func TestLockoutFor(t *testing.T) {
	assert.Equal(t, time.Duration(0), lockoutFor(4))
	assert.Equal(t, 2*time.Minute, lockoutFor(5))
	assert.Equal(t, time.Hour, lockoutFor(12))
	assert.Equal(t, 24*time.Hour, lockoutFor(30))
}
