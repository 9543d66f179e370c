package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/repository"
)

// ProductSales is one row of the sales-by-product aggregate.
type ProductSales struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// DayDemand is one row of the demand-by-day aggregate.
type DayDemand struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Orders int     `json:"orders"`
	Total  float64 `json:"total"`
}

// DateRange restricts aggregates to orders created within the inclusive
// [StartOfDay(From), EndOfDay(To)] window. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range, widening each bound to
// whole calendar days.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(startOfDay(*r.From)) {
		return false
	}
	if r.To != nil && t.After(endOfDay(*r.To)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// ReportService derives read-only aggregates from the full order history.
// The history is small; linear scans over the in-memory list are enough.
type ReportService interface {
	// SalesByProduct sums quantity x unit price across line items of
	// delivered orders, grouped by product name.
	SalesByProduct(ctx context.Context, dateRange DateRange) ([]ProductSales, error)

	// DemandByDay counts orders and sums totals per calendar day over all
	// statuses, ascending by date.
	DemandByDay(ctx context.Context, dateRange DateRange) ([]DayDemand, error)
}

type reportService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewReportService creates a new instance of ReportService
func NewReportService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *reportService) SalesByProduct(ctx context.Context, dateRange DateRange) ([]ProductSales, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	products, err := s.productRepo.List(ctx, repository.ProductFilter{}, "name", repository.SortOrderAsc)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID.String()] = p.Name
	}

	totals := make(map[string]float64)
	for _, order := range orders {
		// Only delivered orders count as realized sales.
		if order.Status != domain.StatusEntregado {
			continue
		}
		if !dateRange.Contains(order.CreatedAt) {
			continue
		}
		for _, item := range order.Items {
			name, ok := names[item.ProductID.String()]
			if !ok {
				// Product was removed from the catalog after the sale.
				name = "ID: " + item.ProductID.String()
			}
			totals[name] += float64(item.Quantity) * item.UnitPrice
		}
	}

	rows := make([]ProductSales, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, ProductSales{Name: name, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return rows, nil
}

func (s *reportService) DemandByDay(ctx context.Context, dateRange DateRange) ([]DayDemand, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	type acc struct {
		orders int
		total  float64
	}
	days := make(map[string]*acc)

	for _, order := range orders {
		if !dateRange.Contains(order.CreatedAt) {
			continue
		}
		day := order.CreatedAt.Format("2006-01-02")
		a, ok := days[day]
		if !ok {
			a = &acc{}
			days[day] = a
		}
		a.orders++
		a.total += order.Total
	}

	rows := make([]DayDemand, 0, len(days))
	for day, a := range days {
		rows = append(rows, DayDemand{Date: day, Orders: a.orders, Total: a.total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	return rows, nil
}
