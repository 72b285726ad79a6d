package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the principal issued by the identity provider. Credentials
// live with the provider; only profile and role data are stored here.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
