package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxUnitPrice is the largest price the decimal(10,2) unit_price column holds.
var MaxUnitPrice = decimal.RequireFromString("99999999.99")

// ValidPrice reports whether p is non-negative, has at most two decimal places
// and fits the unit_price column, so every backend stores it unchanged.
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(MaxUnitPrice) && p.Equal(p.Round(2))
}

// Product represents a stocked product line (one SKU).
// Name is the natural key used by delivery registration.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:200;uniqueIndex;not null"`
	NameLower   string          `gorm:"column:name_lower;size:200;index"`
	Quantity    int             `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    Category        `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	LastUpdated time.Time       `gorm:"not null"`
}

func (p *Product) TableName() string {
	return "products"
}

// NormalizeName is the case-folded form stored in name_lower and matched by
// name searches. Folding happens in Go so both backends agree on non-ASCII letters.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Name != "" {
		p.NameLower = NormalizeName(p.Name)
	}
	return nil
}

// Value is quantity times unit price.
func (p *Product) Value() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
