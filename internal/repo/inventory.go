package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

func (r *GormRepo) ListInventory(ctx context.Context, lowOnly bool, offset, limit int) (int64, []models.InventoryRecord, error) {
	base := r.DB.WithContext(ctx).Model(&models.InventoryRecord{})
	if lowOnly {
		base = base.Where("quantity <= reorder_level")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.InventoryRecord
	q := base.Preload("Product").Order("quantity ASC, product_id ASC")
	if err := paginate(q, offset, limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetInventory(ctx context.Context, productID uuid.UUID) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	if err := r.DB.WithContext(ctx).Preload("Product").Where("product_id = ?", productID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepo) UpsertInventory(ctx context.Context, rec *models.InventoryRecord) error {
	return r.DB.WithContext(ctx).Omit("Product").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "reorder_level", "updated_at"}),
	}).Create(rec).Error
}

// AdjustInventory applies delta to the counter, creating a zero record first
// when the product has none.
func (r *GormRepo) AdjustInventory(ctx context.Context, productID uuid.UUID, delta int) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Product").Where(models.InventoryRecord{ProductID: productID}).FirstOrCreate(&rec).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.InventoryRecord{}).
			Where("product_id = ?", productID).
			Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", productID).First(&rec).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormRepo) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.InventoryRecord{}).
		Where("quantity <= reorder_level").
		Count(&n).Error
	return n, err
}
