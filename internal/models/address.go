package models

import (
	"time"

	"github.com/google/uuid"
)

type AddressType string

const (
	AddressTypeShipping AddressType = "SHIPPING"
	AddressTypeBilling  AddressType = "BILLING"
)

type Address struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"user_id" db:"user_id"`
	Type      AddressType `json:"type" db:"type"`
	FullName  string      `json:"full_name" db:"full_name"`
	Email     string      `json:"email" db:"email"`
	Address1  string      `json:"address1" db:"address1"`
	Address2  *string     `json:"address2" db:"address2"`
	City      string      `json:"city" db:"city"`
	State     string      `json:"state" db:"state"`
	Zip       *string     `json:"zip" db:"zip"`
	Country   *string     `json:"country" db:"country"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
