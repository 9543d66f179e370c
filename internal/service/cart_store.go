package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrProductInactive = errors.New("product is not available")
)

// StockLimitError is returned when a cart increment would exceed the
// last-known stock of a product. The check is advisory only: the
// authoritative check happens in the order-creation transaction.
type StockLimitError struct {
	ProductName string
	Stock       int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (available: %d)", e.ProductName, e.Stock)
}

// CartLineView is a cart line joined with current catalog data.
type CartLineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	Subtotal  float64   `json:"subtotal"`
}

// CartView is the whole cart with its computed total. Prices come from the
// current catalog; they are only snapshotted when the order is confirmed.
type CartView struct {
	Lines []CartLineView `json:"lines"`
	Total float64        `json:"total"`
}

// CartStore holds per-user carts in memory. Carts are session-scoped and
// never persisted; a restart empties every cart.
type CartStore struct {
	mu          sync.Mutex
	carts       map[uuid.UUID][]domain.CartLine
	productRepo repository.ProductRepository
}

// NewCartStore creates a new in-memory cart store
func NewCartStore(productRepo repository.ProductRepository) *CartStore {
	return &CartStore{
		carts:       make(map[uuid.UUID][]domain.CartLine),
		productRepo: productRepo,
	}
}

// AddItem adds qty units of a product to the user's cart, bounding the
// resulting quantity by the product's last-known stock.
func (s *CartStore) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		qty = 1
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return ErrProductInactive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			if lines[i].Quantity+qty > product.Stock {
				return &StockLimitError{ProductName: product.Name, Stock: product.Stock}
			}
			lines[i].Quantity += qty
			s.carts[userID] = lines
			return nil
		}
	}

	if qty > product.Stock {
		return &StockLimitError{ProductName: product.Name, Stock: product.Stock}
	}

	s.carts[userID] = append(lines, domain.CartLine{ProductID: productID, Quantity: qty})
	return nil
}

// ChangeQty adjusts a line quantity by delta. A resulting quantity of zero
// or less removes the line, matching the storefront behavior.
func (s *CartStore) ChangeQty(ctx context.Context, userID, productID uuid.UUID, delta int) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}

		newQty := lines[i].Quantity + delta
		if newQty <= 0 {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
		if newQty > product.Stock {
			return &StockLimitError{ProductName: product.Name, Stock: product.Stock}
		}
		lines[i].Quantity = newQty
		s.carts[userID] = lines
		return nil
	}

	return repository.ErrProductNotFound
}

// RemoveItem removes a product line from the user's cart
func (s *CartStore) RemoveItem(userID, productID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.carts[userID] = append(lines[:i], lines[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the user's cart lines
func (s *CartStore) Get(userID uuid.UUID) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

// View joins the cart with current catalog data and computes the total
func (s *CartStore) View(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines := s.Get(userID)

	view := &CartView{Lines: []CartLineView{}}
	for _, line := range lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				continue
			}
			return nil, err
		}

		subtotal := product.Price * float64(line.Quantity)
		view.Lines = append(view.Lines, CartLineView{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		view.Total += subtotal
	}

	return view, nil
}

// Clear empties the user's cart. Called after a confirmed order and on logout.
func (s *CartStore) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
