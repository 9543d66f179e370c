package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockProductRepository struct {
	products  map[uuid.UUID]*domain.Product
	findCalls int
	listCalls int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) add(name string, price float64, stock int) *domain.Product {
	p := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Category:  "general",
		Price:     price,
		Stock:     stock,
		Active:    true,
		CreatedAt: time.Now(),
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.findCalls++
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, error) {
	m.listCalls++

	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if filter.OnlyActive && !p.Active {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockOrderRepository struct {
	orders      map[uuid.UUID]*domain.Order
	products    *mockProductRepository
	createCalls int
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		orders:   make(map[uuid.UUID]*domain.Order),
		products: products,
	}
}

// CreateWithItems mirrors the all-or-nothing contract: it checks every item
// against current stock before touching anything.
func (m *mockOrderRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	m.createCalls++

	for _, item := range order.Items {
		p, ok := m.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			var name string
			if ok {
				name = p.Name
			}
			return &repository.InsufficientStockError{ProductID: item.ProductID, ProductName: name}
		}
	}
	for _, item := range order.Items {
		m.products.products[item.ProductID].Stock -= item.Quantity
	}

	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *mockOrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	out := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cp := *o
		cp.Items = append([]domain.OrderItem(nil), o.Items...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	all, _ := m.List(ctx)
	out := make([]*domain.Order, 0)
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	if deliveredAt != nil {
		o.DeliveryConfirmedAt = deliveredAt
	}
	return nil
}
