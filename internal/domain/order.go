package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is one of a closed, ordered enumeration. The sequence is used
// for display; adjacency enforcement is optional (see service.OrderService).
type OrderStatus string

const (
	StatusPendiente     OrderStatus = "pendiente"
	StatusEnPreparacion OrderStatus = "en_preparacion"
	StatusListo         OrderStatus = "listo"
	StatusEnviado       OrderStatus = "enviado"
	StatusEntregado     OrderStatus = "entregado"
)

// StatusSequence is the ordered progression from initial to terminal status.
var StatusSequence = []OrderStatus{
	StatusPendiente,
	StatusEnPreparacion,
	StatusListo,
	StatusEnviado,
	StatusEntregado,
}

// ValidStatus reports whether s is a member of the status enumeration.
func ValidStatus(s OrderStatus) bool {
	for _, st := range StatusSequence {
		if st == s {
			return true
		}
	}
	return false
}

// StatusIndex returns the position of s in the sequence, or -1.
func StatusIndex(s OrderStatus) int {
	for i, st := range StatusSequence {
		if st == s {
			return i
		}
	}
	return -1
}

// Delivery methods
const (
	DeliveryRetiro = "retiro"
	DeliveryEnvio  = "envio"
)

// OrderItem is one line of an order. UnitPrice is snapshotted from the
// catalog at creation time and never follows later price changes.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice float64   `json:"unit_price" db:"unit_price"`
}

// Order represents a confirmed purchase
type Order struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	UserID              uuid.UUID   `json:"user_id" db:"user_id"`
	Status              OrderStatus `json:"status" db:"status"`
	DeliveryMethod      string      `json:"delivery_method" db:"delivery_method"`
	PaymentMethod       string      `json:"payment_method" db:"payment_method"`
	ShippingAddress     string      `json:"shipping_address" db:"shipping_address"`
	Total               float64     `json:"total" db:"total"`
	Items               []OrderItem `json:"items"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	DeliveryConfirmedAt *time.Time  `json:"delivery_confirmed_at,omitempty" db:"delivery_confirmed_at"`
}

// ShortID returns the trailing characters of the order id used in
// customer-facing notifications.
func (o *Order) ShortID() string {
	s := o.ID.String()
	if len(s) <= 6 {
		return s
	}
	return s[len(s)-6:]
}
