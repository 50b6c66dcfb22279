package models

import (
	"github.com/shopspring/decimal"
)

// Phone represents a phone in the catalog.
// Image holds the public URL of the stored picture, or nil when none is attached.
// CategoryID is nil for uncategorized phones.
type Phone struct {
	ID          uint            `gorm:"column:phone_id;primaryKey"`
	Name        string          `gorm:"not null"`
	Model       string          `gorm:"not null"`
	Description *string
	Image       *string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CategoryID  *uint           `gorm:"column:category_id;index"`
	Category    *Category       `gorm:"foreignKey:CategoryID"`
}

func (p *Phone) TableName() string {
	return "phones"
}

// HasImage reports whether an image reference is attached.
func (p *Phone) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}
