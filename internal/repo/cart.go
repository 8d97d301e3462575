package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, accountID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where("account_id = ?", accountID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, accountID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("id = ? AND account_id = ?", itemID, accountID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) GetCartItemByProduct(ctx context.Context, accountID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Preload("Product").
		Where("account_id = ? AND product_id = ?", accountID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart adds item.Quantity to the existing line for the product, or
// creates the line. A non-empty note replaces the stored one.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"quantity": gorm.Expr("quantity + ?", item.Quantity)}
		if item.Note != "" {
			updates["note"] = item.Note
		}
		res := tx.Model(&models.CartItem{}).
			Where("account_id = ? AND product_id = ?", item.AccountID, item.ProductID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("account_id = ? AND product_id = ?", item.AccountID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) UpdateCartItem(ctx context.Context, accountID, itemID uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND account_id = ?", itemID, accountID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, accountID, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND account_id = ?", itemID, accountID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, accountID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.CartItem{}).Error
}

func (r *GormRepo) FindCartReceipt(ctx context.Context, accountID uuid.UUID, key string) (*models.CartAddReceipt, error) {
	// A miss is the normal first-add path, so it must not go through First.
	var rec models.CartAddReceipt
	res := r.DB.WithContext(ctx).Where("account_id = ? AND idem_key = ?", accountID, key).Limit(1).Find(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

func (r *GormRepo) CreateCartReceipt(ctx context.Context, rec *models.CartAddReceipt) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}
