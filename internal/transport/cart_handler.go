package transport

import (
	"errors"
	"net/http"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/middleware"
	"corralon-jr/internal/repository"
	"corralon-jr/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// ChangeCartQtyRequest represents a quantity adjustment payload. Delta may
// be negative; a resulting quantity of zero removes the line.
type ChangeCartQtyRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Delta     int    `json:"delta" validate:"required"`
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	cart   *service.CartStore
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart *service.CartStore, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

// RegisterRoutes registers all cart routes. The cart belongs to the buying
// flow, so it is restricted to clientes.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireRole([]string{domain.RoleCliente}, h.logger))

		r.Get("/", h.Get)
		r.Post("/items", h.AddItem)
		r.Patch("/items", h.ChangeQty)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Delete("/", h.Clear)
	})
}

// Get returns the caller's cart with current catalog prices
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.cart.View(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build cart view", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddItem adds a product to the caller's cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.cart.AddItem(r.Context(), userID, productID, req.Quantity); err != nil {
		h.respondCartError(w, err)
		return
	}

	view, err := h.cart.View(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build cart view", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// ChangeQty adjusts a cart line by a delta
func (h *CartHandler) ChangeQty(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangeCartQtyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.cart.ChangeQty(r.Context(), userID, productID, req.Delta); err != nil {
		h.respondCartError(w, err)
		return
	}

	view, err := h.cart.View(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build cart view", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// RemoveItem removes a product line from the caller's cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	h.cart.RemoveItem(userID, productID)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

// Clear empties the caller's cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.cart.Clear(userID)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	var stockErr *service.StockLimitError
	switch {
	case errors.As(err, &stockErr):
		middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, service.ErrProductInactive):
		middleware.RespondWithError(w, http.StatusConflict, "product is not available")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "cart operation failed")
	}
}
