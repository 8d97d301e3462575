package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryNew       InquiryStatus = "new"
	InquiryResponded InquiryStatus = "responded"
	InquiryClosed    InquiryStatus = "closed"
)

func (s InquiryStatus) Valid() bool {
	return s == InquiryNew || s == InquiryResponded || s == InquiryClosed
}

type Inquiry struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"            json:"id"`
	AccountID *uuid.UUID    `gorm:"type:uuid;index"                 json:"account_id,omitempty"`
	ProductID *uuid.UUID    `gorm:"type:uuid"                       json:"product_id,omitempty"`
	Name      string        `gorm:"not null"                        json:"name"`
	Email     string        `gorm:"not null"                        json:"email"`
	Phone     string        `                                       json:"phone"`
	Subject   string        `gorm:"not null"                        json:"subject"`
	Message   string        `gorm:"not null"                        json:"message"`
	Status    InquiryStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	Response  string        `gorm:"not null;default:''"             json:"response"`
	CreatedAt time.Time     `                                       json:"created_at"`
	UpdatedAt time.Time     `                                       json:"updated_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type DesignStatus string

const (
	DesignSubmitted   DesignStatus = "submitted"
	DesignUnderReview DesignStatus = "under_review"
	DesignQuoted      DesignStatus = "quoted"
	DesignApproved    DesignStatus = "approved"
	DesignRejected    DesignStatus = "rejected"
)

func (s DesignStatus) Valid() bool {
	switch s {
	case DesignSubmitted, DesignUnderReview, DesignQuoted, DesignApproved, DesignRejected:
		return true
	}
	return false
}

type DesignRequest struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey"            json:"id"`
	AccountID     *uuid.UUID       `gorm:"type:uuid;index"                 json:"account_id,omitempty"`
	ProductID     *uuid.UUID       `gorm:"type:uuid"                       json:"product_id,omitempty"`
	Name          string           `gorm:"not null"                        json:"name"`
	Email         string           `gorm:"not null"                        json:"email"`
	Phone         string           `                                       json:"phone"`
	FurnitureType string           `gorm:"not null"                        json:"furniture_type"`
	Dimensions    string           `                                       json:"dimensions"`
	Material      string           `                                       json:"material"`
	Budget        *decimal.Decimal `gorm:"type:numeric(12,2)"              json:"budget,omitempty"`
	Description   string           `gorm:"not null"                        json:"description"`
	Status        DesignStatus     `gorm:"type:varchar(32);index;not null" json:"status"`
	QuotedPrice   *decimal.Decimal `gorm:"type:numeric(12,2)"              json:"quoted_price,omitempty"`
	AdminNotes    string           `gorm:"not null;default:''"             json:"admin_notes"`
	CreatedAt     time.Time        `                                       json:"created_at"`
	UpdatedAt     time.Time        `                                       json:"updated_at"`
}

func (d *DesignRequest) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
