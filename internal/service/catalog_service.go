package service

import (
	"context"
	"fmt"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/repository"

	"github.com/google/uuid"
)

// CatalogService defines the interface for catalog management
type CatalogService interface {
	// List returns the catalog. Customers and anonymous visitors only see
	// active products; staff see everything.
	List(ctx context.Context, filter repository.ProductFilter, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) List(ctx context.Context, filter repository.ProductFilter, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, error) {
	return s.productRepo.List(ctx, filter, sortBy, sortOrder)
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, product *domain.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if product.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt

	return s.productRepo.Create(ctx, product)
}

func (s *catalogService) Update(ctx context.Context, product *domain.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if product.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}

	product.UpdatedAt = time.Now()
	return s.productRepo.Update(ctx, product)
}

func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}
