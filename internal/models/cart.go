package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_product;not null" json:"account_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_product;not null" json:"product_id"`
	Quantity  uint      `gorm:"default:1;check:quantity>0"                        json:"quantity"`
	Note      string    `gorm:"not null;default:''"                               json:"note"`
	Product   *Product  `gorm:"foreignKey:ProductID"                              json:"product,omitempty"`
	CreatedAt time.Time `                                                         json:"created_at"`
	UpdatedAt time.Time `                                                         json:"updated_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartAddReceipt marks an Idempotency-Key whose add has already been applied
// for the account.
type CartAddReceipt struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key       string    `gorm:"column:idem_key;primaryKey;size:128"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  uint      `gorm:"not null"`
	CreatedAt time.Time
}
