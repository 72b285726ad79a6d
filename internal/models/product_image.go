package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	ObjectKey string    `json:"-" db:"object_key"`
	URL       string    `json:"url,omitempty" db:"-"` // Presigned, filled on read
	AltText   *string   `json:"alt_text" db:"alt_text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
