package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotCliente    = errors.New("only customers can place orders")
	ErrUnknownStatus = errors.New("unknown order status")
)

// IncompleteAddressError names the missing checkout field, so the caller can
// reject the submission before anything reaches the durable store.
type IncompleteAddressError struct {
	Field string
}

func (e *IncompleteAddressError) Error() string {
	return fmt.Sprintf("delivery address is incomplete: %s is required", e.Field)
}

// TransitionError reports a status change rejected by the strict-transition
// guard.
type TransitionError struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %q to %q", e.From, e.To)
}

// DeliveryDetails carries the checkout choices of the customer.
type DeliveryDetails struct {
	Method         string
	PaymentMethod  string
	RecipientName  string
	RecipientPhone string
	Address        domain.Address
}

// OrderService drives the order-confirmation / order-status workflow.
type OrderService interface {
	// ConfirmOrder turns the user's cart into a durable order. On success
	// the cart is cleared, a notification is appended and the refreshed
	// catalog is returned so callers display authoritative stock.
	ConfirmOrder(ctx context.Context, userID uuid.UUID, actorRole string, details DeliveryDetails) (*domain.Order, []*domain.Product, error)

	// SetStatus transitions an order to the target status and notifies the
	// order's owner. Line items are preserved untouched.
	SetStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)

	// ListOrders returns all orders for staff, or only the user's own for
	// customers, newest first.
	ListOrders(ctx context.Context, userID uuid.UUID, actorRole string) ([]*domain.Order, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}

type orderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cart              *CartStore
	notifications     *NotificationFeed
	strictTransitions bool
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cart *CartStore,
	notifications *NotificationFeed,
	strictTransitions bool,
) OrderService {
	return &orderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		cart:              cart,
		notifications:     notifications,
		strictTransitions: strictTransitions,
	}
}

// ConfirmOrder validates the cart against the current catalog and submits a
// single atomic creation request. Any precondition failure aborts before the
// repository is touched; a store-side rejection leaves the cart intact.
func (s *orderService) ConfirmOrder(ctx context.Context, userID uuid.UUID, actorRole string, details DeliveryDetails) (*domain.Order, []*domain.Product, error) {
	if actorRole != domain.RoleCliente {
		return nil, nil, ErrNotCliente
	}

	lines := s.cart.Get(userID)
	if len(lines) == 0 {
		return nil, nil, ErrEmptyCart
	}

	if details.Method == "" {
		details.Method = domain.DeliveryRetiro
	}
	if details.PaymentMethod == "" {
		details.PaymentMethod = "transferencia"
	}

	// Advisory pre-check against the last-known catalog; prices are
	// snapshotted here. The authoritative stock check happens inside the
	// creation transaction.
	order := &domain.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         domain.StatusPendiente,
		DeliveryMethod: details.Method,
		PaymentMethod:  details.PaymentMethod,
		CreatedAt:      time.Now(),
	}

	for _, line := range lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, nil, &repository.InsufficientStockError{ProductID: line.ProductID}
			}
			return nil, nil, fmt.Errorf("failed to load product: %w", err)
		}
		if !product.Active {
			return nil, nil, ErrProductInactive
		}
		if product.Stock < line.Quantity {
			return nil, nil, &repository.InsufficientStockError{ProductID: product.ID, ProductName: product.Name}
		}

		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
		order.Total += product.Price * float64(line.Quantity)
	}

	if details.Method == domain.DeliveryEnvio {
		if err := validateDeliveryDetails(details); err != nil {
			return nil, nil, err
		}
		order.ShippingAddress = formatShippingAddress(details)
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, nil, err
	}

	// Side effects only after the store accepted the order.
	s.cart.Clear(userID)
	s.notifications.Push(userID, statusMessage(order))

	// Re-fetch the catalog rather than decrementing locally; the store is
	// the only authority on stock.
	catalog, err := s.productRepo.List(ctx, repository.ProductFilter{OnlyActive: true}, "name", repository.SortOrderAsc)
	if err != nil {
		return order, nil, fmt.Errorf("order created but catalog refresh failed: %w", err)
	}

	return order, catalog, nil
}

// SetStatus updates only the status field (plus the delivery-confirmation
// timestamp for the terminal status) and merges the change into the loaded
// order so line items survive.
func (s *orderService) SetStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, ErrUnknownStatus
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.strictTransitions {
		if domain.StatusIndex(status) != domain.StatusIndex(order.Status)+1 {
			return nil, &TransitionError{From: order.Status, To: status}
		}
	}

	var deliveredAt *time.Time
	if status == domain.StatusEntregado {
		now := time.Now()
		deliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status, deliveredAt); err != nil {
		return nil, err
	}

	order.Status = status
	if deliveredAt != nil {
		order.DeliveryConfirmedAt = deliveredAt
	}

	s.notifications.Push(order.UserID, statusMessage(order))

	return order, nil
}

// ListOrders scopes the history by role: customers see their own orders,
// staff see everything.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, actorRole string) ([]*domain.Order, error) {
	if actorRole == domain.RoleCliente {
		return s.orderRepo.ListByUser(ctx, userID)
	}
	return s.orderRepo.List(ctx)
}

// GetOrder retrieves one order with its items
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

func statusMessage(order *domain.Order) string {
	return fmt.Sprintf("Tu pedido %s ahora está %q.", order.ShortID(), order.Status)
}

func validateDeliveryDetails(details DeliveryDetails) error {
	fields := []struct {
		name  string
		value string
	}{
		{"city", details.Address.City},
		{"street", details.Address.Street},
		{"number", details.Address.Number},
		{"recipient name", details.RecipientName},
		{"recipient phone", details.RecipientPhone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &IncompleteAddressError{Field: f.name}
		}
	}
	return nil
}

func formatShippingAddress(details DeliveryDetails) string {
	addr := fmt.Sprintf("%s %s, %s", details.Address.Street, details.Address.Number, details.Address.City)
	if strings.TrimSpace(details.Address.Reference) != "" {
		addr += fmt.Sprintf(" (%s)", details.Address.Reference)
	}
	addr += fmt.Sprintf(" - Recibe: %s, Tel: %s", details.RecipientName, details.RecipientPhone)
	return addr
}
