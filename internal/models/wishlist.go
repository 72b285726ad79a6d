package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	UserID    uuid.UUID       `json:"-" db:"user_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Product   ProductSnapshot `json:"product" db:"-"`
	AddedAt   time.Time       `json:"added_at" db:"added_at"`
}
