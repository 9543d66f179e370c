package domain

import "github.com/google/uuid"

// CartLine is one (product, quantity) entry in a session cart. Carts are
// never persisted; they live in memory for the duration of a session.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}
