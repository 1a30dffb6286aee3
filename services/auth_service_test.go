package services

import (
	"context"
	"testing"
	"time"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/sahilchouksey/edu-platform-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revokedTokens map[string]time.Time

func (r revokedTokens) RevokeToken(_ context.Context, jti string, _ uint, expiresAt time.Time, _ string) error {
	r[jti] = expiresAt
	return nil
}

type authFixture struct {
	svc      *AuthService
	users    *memUsers
	refresh  *memRefreshTokens
	activity *memActivity
	revoked  revokedTokens
	jobs     *fakeJobs
	jwt      *auth.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newMemUsers(),
		refresh:  newMemRefreshTokens(),
		activity: &memActivity{},
		revoked:  revokedTokens{},
		jobs:     &fakeJobs{},
		jwt: auth.NewJWTManager(auth.JWTConfig{
			Secret:        "test-secret",
			Expiry:        15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
			Issuer:        "edu-platform-test",
		}),
	}
	f.svc = NewAuthService(f.users, f.refresh, f.activity, f.jwt, f.revoked, f.jobs)
	return f
}

var testClient = ClientInfo{IP: "10.0.0.1", UserAgent: "test"}

func TestRegisterIssuesSessionAndWelcomeJob(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, model.RoleStudent, session.User.Role)
	assert.Equal(t, 900, session.ExpiresIn)
	assert.Len(t, f.refresh.rows, 1)
	require.Len(t, f.jobs.welcome, 1)
	assert.Equal(t, "ada@example.com", f.jobs.welcome[0].Email)
	require.Len(t, f.activity.rows, 1)
	assert.Equal(t, model.ActivityTypeRegister, f.activity.rows[0].ActivityType)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, testClient)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "battery staple"}, testClient)
	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "correct horse"}, testClient)
	assert.ErrorIs(t, wrongPassword, apperror.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())

	session, err := f.svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)
	claims, err := f.jwt.ValidateTyped(session.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
}

func TestRefreshRotatesAndRejectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized, "a refresh token works once")

	_, err = f.svc.Refresh(ctx, second.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized, "access tokens cannot refresh")
}

func TestRefreshFailsAfterPasswordChange(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)

	users := NewUserService(f.users, nil, nil)
	_, err = users.Update(ctx, session.User.ID, UpdateUserInput{OldPassword: strPtr("correct horse"), Password: strPtr("battery staple")})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLogoutRevokesBothTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	session, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, testClient)
	require.NoError(t, err)

	claims, err := f.jwt.ValidateTyped(session.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, claims, session.RefreshToken, testClient))

	assert.Contains(t, f.revoked, claims.ID)
	assert.WithinDuration(t, claims.ExpiresAt.Time, f.revoked[claims.ID], time.Second)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	users := newMemUsers()
	svc := NewUserService(users, &fakeJobs{}, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID, UpdateUserInput{Password: strPtr("battery staple")})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	_, err = svc.Update(ctx, u.ID, UpdateUserInput{Password: strPtr("battery staple"), OldPassword: strPtr("nope nope")})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)

	updated, err := svc.Update(ctx, u.ID, UpdateUserInput{Password: strPtr("battery staple"), OldPassword: strPtr("correct horse")})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TokenVersion)
	assert.NoError(t, auth.VerifyPassword(updated.PasswordHash, "battery staple"))
}
