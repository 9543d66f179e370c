package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"corralon-jr/internal/domain"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/api/reports/sales-by-product", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "some-user")
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    string
		want    int
	}{
		{"staff role passes", []string{domain.RoleVendedor, domain.RoleAdmin}, domain.RoleVendedor, http.StatusOK},
		{"admin passes admin gate", []string{domain.RoleAdmin}, domain.RoleAdmin, http.StatusOK},
		{"cliente blocked from staff routes", []string{domain.RoleVendedor, domain.RoleAdmin}, domain.RoleCliente, http.StatusForbidden},
		{"deposito blocked from admin routes", []string{domain.RoleAdmin}, domain.RoleDeposito, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireRole(tc.allowed, newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole(tc.role))

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRequireRole_NoRoleInContext(t *testing.T) {
	handler := RequireAdmin(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a role in context")
	}))

	req := httptest.NewRequest("GET", "/api/reports/demand-by-day", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code == http.StatusOK {
		t.Error("request without identity was allowed through")
	}
}
