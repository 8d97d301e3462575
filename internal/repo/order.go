package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/furniture_shop/internal/models"
)

type OrderFilter struct {
	AccountID *uuid.UUID
	Status    models.OrderStatus
}

type OrderTotals struct {
	Count int64
	Spent decimal.Decimal
}

// CreateOrder inserts the header and its lines.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Delivery").
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	base := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.AccountID != nil {
		base = base.Where("account_id = ?", *f.AccountID)
	}
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	q := base.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Delivery").
		Order("created_at DESC, id ASC")
	if err := paginate(q, offset, limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) UpdateOrder(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) UpsertDelivery(ctx context.Context, d *models.Delivery) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"carrier", "tracking_number", "scheduled_for", "delivered_at", "status", "updated_at"}),
	}).Create(d).Error
}

func (r *GormRepo) GetDelivery(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var d models.Delivery
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// AccountOrderTotals counts an account's orders and sums the totals of the
// ones that were not cancelled.
func (r *GormRepo) AccountOrderTotals(ctx context.Context, accountID uuid.UUID) (OrderTotals, error) {
	var out OrderTotals
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("account_id = ?", accountID).
		Count(&out.Count).Error; err != nil {
		return out, err
	}
	spent, err := sumTotals(r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("account_id = ? AND status <> ?", accountID, models.OrderStatusCancelled))
	if err != nil {
		return out, err
	}
	out.Spent = spent
	return out, nil
}

// sumTotals adds order totals with decimal arithmetic. SQL SUM goes through
// float64 on SQLite, where numeric columns are stored as REAL.
func sumTotals(q *gorm.DB) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := q.Pluck("total", &totals).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}
