package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusInProduction,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentRefunded
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentBankTransfer || m == PaymentCard
}

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"           json:"id"`
	AccountID      uuid.UUID       `gorm:"type:uuid;index;not null"       json:"account_id"`
	ShipRecipient  string          `gorm:"not null"                       json:"ship_recipient"`
	ShipPhone      string          `gorm:"not null"                       json:"ship_phone"`
	ShipAddress    string          `gorm:"not null"                       json:"ship_address"`
	ShipCity       string          `gorm:"not null"                       json:"ship_city"`
	ShipPostalCode string          `                                      json:"ship_postal_code"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(32);not null"      json:"payment_method"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"subtotal"`
	ShippingFee    decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"shipping_fee"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"total"`
	Status         OrderStatus     `gorm:"type:varchar(32);index;not null" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(32);not null"      json:"payment_status"`
	Note           string          `gorm:"not null;default:''"            json:"note"`
	Items          []OrderItem     `gorm:"constraint:OnDelete:CASCADE"    json:"items,omitempty"`
	Delivery       *Delivery       `                                      json:"delivery,omitempty"`
	CreatedAt      time.Time       `gorm:"index"                          json:"created_at"`
	UpdatedAt      time.Time       `                                      json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                   json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"     json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"           json:"product_id"`
	ProductName string          `gorm:"not null"                     json:"product_name"`
	Quantity    uint            `gorm:"not null;check:quantity>0"    json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"line_total"`
	Note        string          `gorm:"not null;default:''"          json:"note"`
}

type DeliveryStatus string

const (
	DeliveryScheduled DeliveryStatus = "scheduled"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryScheduled, DeliveryInTransit, DeliveryDelivered, DeliveryFailed:
		return true
	}
	return false
}

type Delivery struct {
	ID             uint           `gorm:"primaryKey"                  json:"id"`
	OrderID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	Carrier        string         `                                   json:"carrier"`
	TrackingNumber string         `                                   json:"tracking_number"`
	ScheduledFor   *time.Time     `                                   json:"scheduled_for,omitempty"`
	DeliveredAt    *time.Time     `                                   json:"delivered_at,omitempty"`
	Status         DeliveryStatus `gorm:"type:varchar(32);not null"   json:"status"`
	UpdatedAt      time.Time      `                                   json:"updated_at"`
}
