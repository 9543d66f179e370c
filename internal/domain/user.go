package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles form a closed set. They gate every state-changing action.
const (
	RoleCliente  = "cliente"
	RoleVendedor = "vendedor"
	RoleDeposito = "deposito"
	RoleAdmin    = "admin"
)

// ValidRole reports whether role belongs to the closed role set.
func ValidRole(role string) bool {
	switch role {
	case RoleCliente, RoleVendedor, RoleDeposito, RoleAdmin:
		return true
	}
	return false
}

// Address is the saved delivery address of a user. Filled in during checkout.
type Address struct {
	City      string `json:"city" db:"address_city"`
	Street    string `json:"street" db:"address_street"`
	Number    string `json:"number" db:"address_number"`
	Reference string `json:"reference" db:"address_reference"`
}

// User represents a registered account
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Surname      string    `json:"surname" db:"surname"`
	Phone        string    `json:"phone" db:"phone"`
	Role         string    `json:"role" db:"role"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
