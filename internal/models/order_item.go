package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem records the price charged at sale time; it is never repriced
type OrderItem struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderID          uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID        uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName      string          `json:"product_name" db:"product_name"`
	Quantity         int             `json:"quantity" db:"quantity"`
	UnitPriceCharged decimal.Decimal `json:"unit_price_charged" db:"unit_price_charged"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPriceCharged.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
