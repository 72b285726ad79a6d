package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter holds catalog listing criteria
type ProductFilter struct {
	Query      string     `json:"query,omitempty"`       // Name/description search
	CategoryID *uuid.UUID `json:"category_id,omitempty"` // Filter by category
	Limit      int        `json:"limit,omitempty"`       // Page size (default: 50)
	Offset     int        `json:"offset,omitempty"`      // Page offset
}

type Product struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	CategoryID    *uuid.UUID          `json:"category_id" db:"category_id"`
	Name          string              `json:"name" db:"name"`
	Description   *string             `json:"description" db:"description"`
	UnitPrice     decimal.Decimal     `json:"unit_price" db:"unit_price"`
	SalePrice     decimal.NullDecimal `json:"sale_price" db:"sale_price"`
	StockQuantity int                 `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool                `json:"is_active" db:"is_active"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
	Images        []*ProductImage     `json:"images,omitempty" db:"-"`
}

// EffectivePrice returns the price a buyer pays right now
func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.UnitPrice, p.SalePrice)
}

// Snapshot captures the pricing and availability fields checkout relies on
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:            p.ID,
		Name:          p.Name,
		UnitPrice:     p.UnitPrice,
		SalePrice:     p.SalePrice,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}

// ProductSnapshot is the product row as seen at the instant of checkout
type ProductSnapshot struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	StockQuantity int                 `json:"stock_quantity"`
	IsActive      bool                `json:"is_active"`
}

func (p ProductSnapshot) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.UnitPrice, p.SalePrice)
}

// EffectivePrice applies the sale price only when it is set and strictly
// lower than the unit price.
func EffectivePrice(unitPrice decimal.Decimal, salePrice decimal.NullDecimal) decimal.Decimal {
	if salePrice.Valid && salePrice.Decimal.LessThan(unitPrice) {
		return salePrice.Decimal
	}
	return unitPrice
}
