package transport

import (
	"errors"
	"io"
	"net/http"

	"corralon-jr/internal/middleware"
	"corralon-jr/internal/payment"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PreferenceItemRequest is one checkout line forwarded to the provider
type PreferenceItemRequest struct {
	ID        string  `json:"id"`
	Title     string  `json:"title" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
}

// CreatePreferenceRequest represents the checkout-preference payload
type CreatePreferenceRequest struct {
	OrderID      string                  `json:"order_id" validate:"required"`
	Items        []PreferenceItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingCost float64                 `json:"shipping_cost" validate:"gte=0"`
}

// CreatePreferenceResponse carries the opaque provider preference id
type CreatePreferenceResponse struct {
	PreferenceID string `json:"preference_id"`
}

// PaymentHandler bridges checkout to the hosted payment provider
type PaymentHandler struct {
	client *payment.Client
	logger *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(client *payment.Client, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{client: client, logger: logger}
}

// RegisterRoutes registers all payment routes. The webhook stays public:
// the provider calls it without our JWTs.
func (h *PaymentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/webhook", h.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/preference", h.CreatePreference)
		})
	})
}

// CreatePreference exchanges cart contents for a provider checkout preference
func (h *PaymentHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var req CreatePreferenceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]payment.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, payment.Item{
			ID:        item.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	preferenceID, err := h.client.CreatePreference(r.Context(), req.OrderID, items, req.ShippingCost)
	if err != nil {
		if errors.Is(err, payment.ErrMissingCredentials) {
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "payment provider is not configured")
			return
		}

		h.logger.Error("Failed to create payment preference",
			zap.String("order_id", req.OrderID),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to create payment preference")
		return
	}

	h.logger.Info("Payment preference created",
		zap.String("order_id", req.OrderID),
		zap.String("preference_id", preferenceID),
	)
	middleware.RespondWithJSON(w, http.StatusOK, CreatePreferenceResponse{PreferenceID: preferenceID})
}

// Webhook receives provider payment notifications. The payload is only
// logged: confirmed orders are created up front and statuses are driven by
// staff, so there is nothing to reconcile yet.
// TODO: verify the provider signature and reconcile payment state once
// orders carry a payment status.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	h.logger.Info("Payment webhook received",
		zap.String("topic", r.URL.Query().Get("topic")),
		zap.String("payment_id", r.URL.Query().Get("id")),
		zap.Int("body_bytes", len(body)),
	)

	// Always acknowledge so the provider stops retrying.
	w.WriteHeader(http.StatusOK)
}
