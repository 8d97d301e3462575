package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

func (r *GormRepo) CreateAccountIfNotExists(ctx context.Context, a *models.Account) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", a.Email).FirstOrCreate(a)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrAccountExists
	}
	return nil
}

func (r *GormRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) UpdateAccount(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Account, error) {
	if len(fields) > 0 {
		if err := r.DB.WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return r.GetAccountByID(ctx, id)
}

func (r *GormRepo) ListAccounts(ctx context.Context, role, q string, offset, limit int) (int64, []models.Account, error) {
	base := r.DB.WithContext(ctx).Model(&models.Account{})
	if role != "" {
		base = base.Where("role = ?", role)
	}
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Account
	if err := paginate(base.Order("created_at DESC"), offset, limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
