package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategorySofa    Category = "sofa"
	CategoryChair   Category = "chair"
	CategoryTable   Category = "table"
	CategoryBed     Category = "bed"
	CategoryStorage Category = "storage"
	CategoryDesk    Category = "desk"
	CategoryOutdoor Category = "outdoor"
	CategoryDecor   Category = "decor"
)

var Categories = []Category{
	CategorySofa, CategoryChair, CategoryTable, CategoryBed,
	CategoryStorage, CategoryDesk, CategoryOutdoor, CategoryDecor,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	Name        string          `gorm:"not null"                      json:"name"`
	Description string          `gorm:"not null;default:''"           json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	Category    Category        `gorm:"type:varchar(32);index;not null" json:"category"`
	Material    string          `gorm:"index"                         json:"material"`
	Dimensions  string          `                                     json:"dimensions"`
	Active      bool            `gorm:"not null;default:true;index"   json:"active"`
	Images      []ProductImage  `gorm:"constraint:OnDelete:CASCADE"   json:"images"`
	CreatedAt   time.Time       `                                     json:"created_at"`
	UpdatedAt   time.Time       `                                     json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey"                  json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"    json:"-"`
	URL       string    `gorm:"not null"                    json:"url"`
	Position  int       `gorm:"not null;default:0"          json:"position"`
}
