package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"corralon-jr/internal/config"
)

var (
	ErrMissingCredentials = errors.New("payment provider credentials are not configured")
)

// Item is one checkout line handed to the payment provider.
type Item struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceRequest struct {
	Items             []Item   `json:"items"`
	BackURLs          backURLs `json:"back_urls"`
	AutoReturn        string   `json:"auto_return"`
	ExternalReference string   `json:"external_reference"`
	NotificationURL   string   `json:"notification_url"`
}

type preferenceResponse struct {
	ID string `json:"id"`
}

// Client exchanges cart contents for a Mercado Pago checkout preference. It
// is a boundary, not a reconciliation engine: the opaque preference id is
// all the application ever learns.
type Client struct {
	cfg        config.PaymentConfig
	httpClient *http.Client
}

// NewClient creates a Mercado Pago client
func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatePreference submits the items plus an optional shipping line and
// returns the opaque preference id used to render the hosted widget.
func (c *Client) CreatePreference(ctx context.Context, orderID string, items []Item, shippingCost float64) (string, error) {
	if c.cfg.AccessToken == "" {
		return "", ErrMissingCredentials
	}
	if len(items) == 0 {
		return "", errors.New("no items in the order")
	}

	for i := range items {
		if items[i].Currency == "" {
			items[i].Currency = "ARS"
		}
	}

	if shippingCost > 0 {
		items = append(items, Item{
			ID:        "shipping",
			Title:     "Costo de Envío",
			Quantity:  1,
			UnitPrice: shippingCost,
			Currency:  "ARS",
		})
	}

	payload := preferenceRequest{
		Items: items,
		BackURLs: backURLs{
			Success: c.cfg.FrontendURL + "/pago-exitoso",
			Failure: c.cfg.FrontendURL + "/pago-fallido",
			Pending: c.cfg.FrontendURL + "/pago-pendiente",
		},
		AutoReturn:        "approved",
		ExternalReference: orderID,
		NotificationURL:   c.cfg.BackendURL + "/api/payments/webhook",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode preference: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, string(respBody))
	}

	var pref preferenceResponse
	if err := json.Unmarshal(respBody, &pref); err != nil {
		return "", fmt.Errorf("failed to parse provider response: %w", err)
	}
	if pref.ID == "" {
		return "", errors.New("payment provider returned an empty preference id")
	}

	return pref.ID, nil
}
