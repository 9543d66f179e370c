package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"corralon-jr/internal/domain"
	"corralon-jr/internal/middleware"
	"corralon-jr/internal/repository"
	"corralon-jr/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stub services for handler tests

type stubOrderService struct {
	confirmOrder  *domain.Order
	confirmErr    error
	setStatusFn   func(status domain.OrderStatus) (*domain.Order, error)
	listOrders    []*domain.Order
	gotActorRole  string
	gotDetails    service.DeliveryDetails
	gotListUserID uuid.UUID
}

func (s *stubOrderService) ConfirmOrder(ctx context.Context, userID uuid.UUID, actorRole string, details service.DeliveryDetails) (*domain.Order, []*domain.Product, error) {
	s.gotActorRole = actorRole
	s.gotDetails = details
	if s.confirmErr != nil {
		return nil, nil, s.confirmErr
	}
	return s.confirmOrder, []*domain.Product{}, nil
}

func (s *stubOrderService) SetStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	return s.setStatusFn(status)
}

func (s *stubOrderService) ListOrders(ctx context.Context, userID uuid.UUID, actorRole string) ([]*domain.Order, error) {
	s.gotListUserID = userID
	s.gotActorRole = actorRole
	return s.listOrders, nil
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	for _, o := range s.listOrders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

type stubUserService struct {
	users []*domain.User
}

func (s *stubUserService) Register(ctx context.Context, email, password, name, surname, phone string) (*domain.User, error) {
	return nil, nil
}
func (s *stubUserService) Login(ctx context.Context, email, password string) (string, string, *domain.User, error) {
	return "", "", nil, service.ErrInvalidCredentials
}
func (s *stubUserService) Logout(ctx context.Context, refreshToken string) error { return nil }
func (s *stubUserService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return "", service.ErrInvalidToken
}
func (s *stubUserService) ValidateToken(tokenString string) (*service.Claims, error) {
	return nil, service.ErrInvalidToken
}
func (s *stubUserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users, nil
}
func (s *stubUserService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	return nil
}
func (s *stubUserService) UpdateAddress(ctx context.Context, userID uuid.UUID, address domain.Address) error {
	return nil
}

func authedRequest(method, target string, body []byte, userID uuid.UUID, role string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, middleware.UserRoleKey, role)
	return req.WithContext(ctx)
}

func sampleOrder(userID uuid.UUID) *domain.Order {
	orderID := uuid.New()
	return &domain.Order{
		ID:             orderID,
		UserID:         userID,
		Status:         domain.StatusPendiente,
		DeliveryMethod: domain.DeliveryRetiro,
		PaymentMethod:  "transferencia",
		Total:          19000,
		Items: []domain.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), Quantity: 2, UnitPrice: 9500},
		},
		CreatedAt: time.Now(),
	}
}

func TestOrderHandler_Confirm(t *testing.T) {
	userID := uuid.New()
	orders := &stubOrderService{confirmOrder: sampleOrder(userID)}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	body := []byte(`{"delivery_method":"retiro"}`)
	req := authedRequest("POST", "/api/orders", body, userID, domain.RoleCliente)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var resp ConfirmOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Order.Status != string(domain.StatusPendiente) {
		t.Errorf("order status = %q, want pendiente", resp.Order.Status)
	}
	if len(resp.Order.Items) != 1 || resp.Order.Items[0].Subtotal != 19000 {
		t.Errorf("items = %+v", resp.Order.Items)
	}
	if orders.gotActorRole != domain.RoleCliente {
		t.Errorf("actor role passed to service = %q", orders.gotActorRole)
	}
}

func TestOrderHandler_Confirm_InsufficientStockMapsToConflict(t *testing.T) {
	userID := uuid.New()
	orders := &stubOrderService{
		confirmErr: &repository.InsufficientStockError{ProductID: uuid.New(), ProductName: "Cemento Portland x50kg"},
	}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("POST", "/api/orders", []byte(`{}`), userID, domain.RoleCliente)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Cemento Portland x50kg") {
		t.Errorf("error body does not name the product: %s", w.Body.String())
	}
}

func TestOrderHandler_Confirm_InactiveProductMapsToConflict(t *testing.T) {
	orders := &stubOrderService{confirmErr: service.ErrProductInactive}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("POST", "/api/orders", []byte(`{}`), uuid.New(), domain.RoleCliente)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no longer available") {
		t.Errorf("error body = %s", w.Body.String())
	}
}

func TestOrderHandler_Confirm_EmptyCartMapsToBadRequest(t *testing.T) {
	orders := &stubOrderService{confirmErr: service.ErrEmptyCart}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("POST", "/api/orders", []byte(`{}`), uuid.New(), domain.RoleCliente)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestOrderHandler_Confirm_WrongRoleMapsToForbidden(t *testing.T) {
	orders := &stubOrderService{confirmErr: service.ErrNotCliente}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("POST", "/api/orders", []byte(`{}`), uuid.New(), domain.RoleVendedor)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestOrderHandler_Confirm_RejectsUnknownDeliveryMethod(t *testing.T) {
	orders := &stubOrderService{confirmOrder: sampleOrder(uuid.New())}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("POST", "/api/orders", []byte(`{"delivery_method":"moto"}`), uuid.New(), domain.RoleCliente)
	w := httptest.NewRecorder()

	handler.Confirm(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an unknown delivery method", w.Code)
	}
}

func TestOrderHandler_Get_CustomerCannotSeeOthersOrders(t *testing.T) {
	owner := uuid.New()
	order := sampleOrder(owner)
	orders := &stubOrderService{listOrders: []*domain.Order{order}}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	req := authedRequest("GET", "/api/orders/"+order.ID.String(), nil, uuid.New(), domain.RoleCliente)
	req = withURLParam(req, "id", order.ID.String())
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestOrderHandler_SetStatus(t *testing.T) {
	owner := uuid.New()
	order := sampleOrder(owner)
	orders := &stubOrderService{
		setStatusFn: func(status domain.OrderStatus) (*domain.Order, error) {
			cp := *order
			cp.Status = status
			if status == domain.StatusEntregado {
				now := time.Now()
				cp.DeliveryConfirmedAt = &now
			}
			return &cp, nil
		},
	}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	body := []byte(`{"status":"entregado"}`)
	req := authedRequest("PATCH", "/api/orders/"+order.ID.String()+"/status", body, uuid.New(), domain.RoleDeposito)
	req = withURLParam(req, "id", order.ID.String())
	w := httptest.NewRecorder()

	handler.SetStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var resp OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "entregado" {
		t.Errorf("status = %q, want entregado", resp.Status)
	}
	if resp.DeliveryConfirmedAt == nil {
		t.Error("delivery_confirmed_at missing from the response")
	}
}

func TestOrderHandler_SetStatus_RejectsUnknownValue(t *testing.T) {
	orders := &stubOrderService{}
	handler := NewOrderHandler(orders, &stubUserService{}, zap.NewNop())

	body := []byte(`{"status":"despachado"}`)
	req := authedRequest("PATCH", "/api/orders/"+uuid.NewString()+"/status", body, uuid.New(), domain.RoleAdmin)
	req = withURLParam(req, "id", uuid.NewString())
	w := httptest.NewRecorder()

	handler.SetStatus(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestOrderHandler_ExportCSV(t *testing.T) {
	owner := uuid.New()
	order := sampleOrder(owner)
	orders := &stubOrderService{listOrders: []*domain.Order{order}}
	users := &stubUserService{users: []*domain.User{
		{ID: owner, Name: "Juan", Surname: "Pérez", Role: domain.RoleCliente},
	}}
	handler := NewOrderHandler(orders, users, zap.NewNop())

	req := authedRequest("GET", "/api/orders/export", nil, uuid.New(), domain.RoleAdmin)
	w := httptest.NewRecorder()

	handler.ExportCSV(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "pedidos_") {
		t.Errorf("content disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "Juan Pérez") {
		t.Error("export does not resolve the client name")
	}
}
