package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewSummary aggregates the reviews of one product
type ReviewSummary struct {
	ProductID     uuid.UUID `json:"product_id"`
	Count         int       `json:"count"`
	AverageRating float64   `json:"average_rating"`
	Reviews       []*Review `json:"reviews"`
}
