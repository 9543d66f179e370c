package service

import (
	"context"
	"testing"

	"corralon-jr/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Confirming an order decrements stock by exactly the ordered quantity when
// it fits, and leaves everything untouched when it does not.
func TestProperty_StockNeverGoesNegative(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock after checkout is either stock-qty or unchanged", prop.ForAll(
		func(stock int, qty int) bool {
			productRepo, _, cart, _, svc := newOrderServiceFixture(false)
			ctx := context.Background()
			userID := uuid.New()

			p := productRepo.add("Bolsa de cemento", 9500, qty)
			if err := cart.AddItem(ctx, userID, p.ID, qty); err != nil {
				t.Logf("FAIL: AddItem within stock: %v", err)
				return false
			}

			// Shrink stock after the cart was filled, simulating a
			// concurrent sale.
			productRepo.products[p.ID].Stock = stock

			_, _, err := svc.ConfirmOrder(ctx, userID, domain.RoleCliente, DeliveryDetails{})
			after := productRepo.products[p.ID].Stock

			if qty <= stock {
				if err != nil {
					t.Logf("FAIL: checkout rejected with qty %d <= stock %d: %v", qty, stock, err)
					return false
				}
				return after == stock-qty && len(cart.Get(userID)) == 0
			}

			// Oversell: rejected, stock and cart untouched.
			return err != nil && after == stock && len(cart.Get(userID)) == 1
		},
		gen.IntRange(0, 50),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}

// Every accepted checkout produces exactly one notification for the buyer.
func TestProperty_CheckoutNotifiesBuyerOnce(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("one notification per confirmed order", prop.ForAll(
		func(orderCount int) bool {
			productRepo, _, cart, feed, svc := newOrderServiceFixture(false)
			ctx := context.Background()
			userID := uuid.New()

			p := productRepo.add("Ladrillo común", 250, orderCount*2)

			for i := 0; i < orderCount; i++ {
				if err := cart.AddItem(ctx, userID, p.ID, 1); err != nil {
					t.Logf("FAIL: AddItem: %v", err)
					return false
				}
				if _, _, err := svc.ConfirmOrder(ctx, userID, domain.RoleCliente, DeliveryDetails{}); err != nil {
					t.Logf("FAIL: ConfirmOrder: %v", err)
					return false
				}
			}

			return len(feed.List(userID, false)) == orderCount
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}
