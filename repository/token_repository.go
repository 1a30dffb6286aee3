package repository

import (
	"context"

	"github.com/sahilchouksey/edu-platform-api/model"
	"gorm.io/gorm"
)

// RefreshTokenRepository persists issued refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	FindByTokenID(ctx context.Context, jti string) (*model.RefreshToken, error)
	// Revoke marks the token revoked and reports whether it was usable before
	Revoke(ctx context.Context, jti string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository returns the postgres implementation
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, t *model.RefreshToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(t).Error
}

func (r *refreshTokenRepository) FindByTokenID(ctx context.Context, jti string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_id = ?", jti).First(&t).Error; err != nil {
		return nil, notFound(err, "refresh token", jti)
	}
	return &t, nil
}

// Revoke is a conditional update so two concurrent refreshes cannot both succeed
func (r *refreshTokenRepository) Revoke(ctx context.Context, jti string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token_id = ? AND revoked = ?", jti, false).
		Update("revoked", true)
	return res.RowsAffected > 0, res.Error
}

func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
