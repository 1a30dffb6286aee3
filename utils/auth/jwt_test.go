package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        2 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "edu-platform-api",
	})
}

func TestIssuePairProducesDistinctTypedTokens(t *testing.T) {
	m := newTestManager()
	pair, err := m.IssuePair(Subject{UserID: 42, Email: "a@b.io", Role: "student", TokenVersion: 3})
	require.NoError(t, err)

	assert.NotEqual(t, pair.Access.ID, pair.Refresh.ID)
	assert.True(t, pair.Refresh.ExpiresAt.After(pair.Access.ExpiresAt))

	claims, err := m.ValidateTyped(pair.Access.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, pair.Access.ID, claims.ID)

	_, err = m.ValidateTyped(pair.Refresh.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateTokenExpired(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-3 * time.Hour)
	m.now = func() time.Time { return issued }
	pair, err := m.IssuePair(Subject{UserID: 1, Email: "a@b.io", Role: "admin"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(pair.Access.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	pair, err := newTestManager().IssuePair(Subject{UserID: 1})
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{Secret: "other", Expiry: time.Hour, RefreshExpiry: time.Hour})
	_, err = other.ValidateToken(pair.Access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	Cost = 4
	t.Cleanup(func() { Cost = DefaultCost })

	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword(hash, "correct horse"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong horse"), ErrPasswordMismatch)
	assert.GreaterOrEqual(t, len(PlaceholderPassword()), MinPasswordLength)
}
