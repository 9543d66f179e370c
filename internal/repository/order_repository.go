package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"corralon-jr/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// InsufficientStockError names the product whose stock could not cover the
// requested quantity. The whole transaction rolls back when it occurs.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("insufficient stock for %s", name)
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateWithItems persists the order header, its items and the stock
	// decrement of every referenced product in one transaction. It is the
	// single all-or-nothing unit of the workflow: on any failure nothing
	// is written and the first insufficient product is reported.
	CreateWithItems(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems inserts the order and its items and decrements stock
// atomically. The conditional UPDATE arbitrates concurrent purchases of the
// last unit: whichever transaction reaches the row first wins, the loser
// rolls back with InsufficientStockError.
func (r *orderRepository) CreateWithItems(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, delivery_method, payment_method, shipping_address, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, order.ID, order.UserID, order.Status, order.DeliveryMethod, order.PaymentMethod,
		order.ShippingAddress, order.Total, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			var name string
			// Best effort: the name only decorates the error message.
			_ = tx.QueryRowContext(ctx, `SELECT name FROM products WHERE id = $1`, item.ProductID).Scan(&name)
			return &InsufficientStockError{ProductID: item.ProductID, ProductName: name}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

const orderColumns = "id, user_id, status, delivery_method, payment_method, shipping_address, total, created_at, delivery_confirmed_at"

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.DeliveryMethod,
		&order.PaymentMethod,
		&order.ShippingAddress,
		&order.Total,
		&order.CreatedAt,
		&order.DeliveryConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID retrieves an order and its line items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}

// List retrieves all orders with their items, newest first
func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	return r.list(ctx, "", nil)
}

// ListByUser retrieves the orders owned by one user, newest first
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return r.list(ctx, "WHERE user_id = $1", []interface{}{userID})
}

func (r *orderRepository) list(ctx context.Context, whereClause string, args []interface{}) ([]*domain.Order, error) {
	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC", orderColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orderMap := make(map[uuid.UUID]*domain.Order)
	orderIDs := []string{}
	orders := []*domain.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID.String())
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return orders, nil
	}

	// One batched query for all line items; avoids an N+1 per order.
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := orderMap[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return orders, nil
}

// UpdateStatus updates only the status column (and the delivery-confirmation
// timestamp when provided). Line items are untouched; callers must merge the
// change into any local copy instead of replacing it.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, deliveredAt *time.Time) error {
	var (
		result sql.Result
		err    error
	)

	if deliveredAt != nil {
		result, err = r.db.ExecContext(ctx, `
			UPDATE orders SET status = $2, delivery_confirmed_at = $3 WHERE id = $1
		`, id, status, *deliveredAt)
	} else {
		result, err = r.db.ExecContext(ctx, `
			UPDATE orders SET status = $2 WHERE id = $1
		`, id, status)
	}

	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}
