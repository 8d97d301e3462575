package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryRecord is a plain stock counter. Nothing reserves or locks it.
type InventoryRecord struct {
	ProductID    uuid.UUID `gorm:"type:uuid;primaryKey"   json:"product_id"`
	Quantity     int       `gorm:"not null;default:0"     json:"quantity"`
	ReorderLevel int       `gorm:"not null;default:0"     json:"reorder_level"`
	Product      *Product  `gorm:"foreignKey:ProductID"   json:"product,omitempty"`
	UpdatedAt    time.Time `                              json:"updated_at"`
}
