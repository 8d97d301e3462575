package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"       json:"email"`
	Name         string    `gorm:"not null"                   json:"name"`
	Phone        string    `                                  json:"phone"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         string    `gorm:"not null;default:customer"  json:"role"`
	CreatedAt    time.Time `                                  json:"created_at"`
	UpdatedAt    time.Time `                                  json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64     `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"default:false"         json:"revoked"`
}
