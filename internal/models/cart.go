package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one (user, product) row of a cart joined with the product
type CartLine struct {
	UserID    uuid.UUID       `json:"-"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
}

// LineTotal is quantity times the effective price
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the read model returned to the shopper
type Cart struct {
	Lines     []*CartLine     `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCart totals the given lines
func NewCart(lines []*CartLine) *Cart {
	cart := &Cart{Lines: lines, Subtotal: decimal.Zero}
	if cart.Lines == nil {
		cart.Lines = []*CartLine{}
	}
	for _, line := range lines {
		cart.ItemCount += line.Quantity
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal())
	}
	return cart
}
