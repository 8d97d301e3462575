package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/models"
	"github.com/Skotchmaster/furniture_shop/internal/tokens"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func refreshExpiredOrRevoked(db *gorm.DB, jti, raw string) (bool, error) {
	var t models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&t).Error; err != nil {
		return false, err
	}
	if t.Revoked || t.ExpiresAt < time.Now().Unix() || t.Token != tokens.Sha256Hex(raw) {
		return true, nil
	}
	return false, nil
}

// RotateRefreshToken revokes the presented token and stores its successor
// in one transaction. A token can be rotated only once.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldRaw string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired, err := refreshExpiredOrRevoked(tx, oldJTI, oldRaw)
		if err != nil {
			return err
		}
		if expired {
			return ErrTokenRevoked
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}

		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, raw string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokens.Sha256Hex(raw)).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, accountID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("account_id = ? AND revoked = ?", accountID, false).
		Update("revoked", true).Error
}
