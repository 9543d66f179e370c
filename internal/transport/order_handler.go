package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/export"
	"corralon-jr/internal/middleware"
	"corralon-jr/internal/repository"
	"corralon-jr/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfirmOrderRequest represents the checkout payload
type ConfirmOrderRequest struct {
	DeliveryMethod string `json:"delivery_method" validate:"omitempty,oneof=retiro envio"`
	PaymentMethod  string `json:"payment_method"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	City           string `json:"city"`
	Street         string `json:"street"`
	Number         string `json:"number"`
	Reference      string `json:"reference"`
}

// SetStatusRequest represents the status change payload
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pendiente en_preparacion listo enviado entregado"`
}

// OrderItemResponse represents one order line
type OrderItemResponse struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderResponse represents order data returned to clients
type OrderResponse struct {
	ID                  string              `json:"id"`
	ShortID             string              `json:"short_id"`
	UserID              string              `json:"user_id"`
	Status              string              `json:"status"`
	DeliveryMethod      string              `json:"delivery_method"`
	PaymentMethod       string              `json:"payment_method"`
	ShippingAddress     string              `json:"shipping_address,omitempty"`
	Total               float64             `json:"total"`
	Items               []OrderItemResponse `json:"items"`
	CreatedAt           string              `json:"created_at"`
	DeliveryConfirmedAt *string             `json:"delivery_confirmed_at,omitempty"`
}

// ConfirmOrderResponse bundles the new order with the refreshed catalog so
// the storefront can repaint stock without a second round trip.
type ConfirmOrderResponse struct {
	Order   OrderResponse     `json:"order"`
	Catalog []ProductResponse `json:"catalog"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice * float64(item.Quantity),
		})
	}

	resp := OrderResponse{
		ID:              order.ID.String(),
		ShortID:         order.ShortID(),
		UserID:          order.UserID.String(),
		Status:          string(order.Status),
		DeliveryMethod:  order.DeliveryMethod,
		PaymentMethod:   order.PaymentMethod,
		ShippingAddress: order.ShippingAddress,
		Total:           order.Total,
		Items:           items,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
	}
	if order.DeliveryConfirmedAt != nil {
		s := order.DeliveryConfirmedAt.Format(time.RFC3339)
		resp.DeliveryConfirmedAt = &s
	}
	return resp
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	userService  service.UserService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, userService service.UserService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		userService:  userService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Confirm)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole([]string{domain.RoleVendedor, domain.RoleDeposito, domain.RoleAdmin}, h.logger))
			r.Patch("/{id}/status", h.SetStatus)
			r.Get("/export", h.ExportCSV)
		})
	})
}

// Confirm turns the caller's cart into an order
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ConfirmOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := service.DeliveryDetails{
		Method:         req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Address: domain.Address{
			City:      req.City,
			Street:    req.Street,
			Number:    req.Number,
			Reference: req.Reference,
		},
	}

	order, catalog, err := h.orderService.ConfirmOrder(r.Context(), userID, currentUserRole(r), details)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	products := make([]ProductResponse, 0, len(catalog))
	for _, p := range catalog {
		products = append(products, toProductResponse(p))
	}

	h.logger.Info("Order confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, ConfirmOrderResponse{
		Order:   toOrderResponse(order),
		Catalog: products,
	})
}

// List returns the order history, scoped by role
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID, currentUserRole(r))
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toOrderResponse(order))
	}

	middleware.RespondWithJSON(w, http.StatusOK, responses)
}

// Get returns one order. Customers can only see their own.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	if currentUserRole(r) == domain.RoleCliente && order.UserID != userID {
		middleware.RespondWithError(w, http.StatusForbidden, "access denied")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// SetStatus moves an order through the fulfillment workflow
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req SetStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.SetStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)
	middleware.RespondWithJSON(w, http.StatusOK, toOrderResponse(order))
}

// ExportCSV streams the full order history as a spreadsheet-friendly CSV
func (h *OrderHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.ListOrders(r.Context(), userID, currentUserRole(r))
	if err != nil {
		h.logger.Error("Failed to list orders for export", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export orders")
		return
	}

	clientNames, err := h.clientNames(r)
	if err != nil {
		h.logger.Error("Failed to resolve client names for export", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export orders")
		return
	}

	filename := fmt.Sprintf("pedidos_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteOrdersCSV(w, orders, clientNames); err != nil {
		h.logger.Error("Failed to write orders CSV", zap.Error(err))
	}
}

func (h *OrderHandler) clientNames(r *http.Request) (map[string]string, error) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.String()] = fmt.Sprintf("%s %s", u.Name, u.Surname)
	}
	return names, nil
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	var stockErr *repository.InsufficientStockError
	var addrErr *service.IncompleteAddressError
	var transErr *service.TransitionError

	switch {
	case errors.As(err, &stockErr):
		middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
	case errors.As(err, &addrErr):
		middleware.RespondWithError(w, http.StatusBadRequest, addrErr.Error())
	case errors.As(err, &transErr):
		middleware.RespondWithError(w, http.StatusConflict, transErr.Error())
	case errors.Is(err, service.ErrProductInactive):
		middleware.RespondWithError(w, http.StatusConflict, "product is no longer available")
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrNotCliente):
		middleware.RespondWithError(w, http.StatusForbidden, "only customers can place orders")
	case errors.Is(err, service.ErrUnknownStatus):
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "order not found")
	default:
		h.logger.Error("Order operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "order operation failed")
	}
}
