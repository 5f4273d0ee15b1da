package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

type fixture struct {
	checkout *checkout.Service
	catalog  *catalog.Service
	ledger   *ledger.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st := store.New(client)
	bus := &events.Bus{Logger: zerolog.Nop()}
	cat := &catalog.Service{Store: st, Events: bus, Logger: zerolog.Nop()}
	led := &ledger.Service{
		Store:  st,
		Events: bus,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	return fixture{
		checkout: &checkout.Service{Catalog: cat, Ledger: led, Logger: zerolog.Nop()},
		catalog:  cat,
		ledger:   led,
	}
}

func (f fixture) seed(t *testing.T, p catalog.Product) catalog.Product {
	t.Helper()
	created, err := f.catalog.Create(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestCheckoutRecordsOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.seed(t, catalog.Product{Name: "Americano", Price: 100, Category: "Coffee", IsActive: true, UseStock: true, Stock: 10})
	bagel := f.seed(t, catalog.Product{Name: "Bagel", Price: 50, Category: "Food", IsActive: true})

	order, err := f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{
			{ProductID: coffee.ID, Qty: 2},
			{ProductID: bagel.ID, Qty: 1},
		},
		Discount:      &pricing.Discount{Type: pricing.DiscountPercent, Value: 10},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	require.Equal(t, int64(250), order.Subtotal)
	require.Equal(t, int64(225), order.Total)
	require.Equal(t, "card", order.PaymentMethod)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Coffee", order.Items[0].Category)

	got, err := f.catalog.Get(ctx, coffee.ID)
	require.NoError(t, err)
	require.Equal(t, int64(8), got.Stock)

	orders, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.Checkout(context.Background(), checkout.Input{})
	requireValidation(t, err)
}

func TestCheckoutRejectsZeroTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.seed(t, catalog.Product{Name: "Americano", Price: 100, IsActive: true})

	_, err := f.checkout.Checkout(ctx, checkout.Input{
		Lines:    []checkout.Line{{ProductID: coffee.ID, Qty: 1}},
		Discount: &pricing.Discount{Type: pricing.DiscountAmount, Value: 100},
	})
	requireValidation(t, err)

	orders, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCheckoutRejectsOverSoldTrackedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.seed(t, catalog.Product{Name: "Americano", Price: 100, IsActive: true, UseStock: true, Stock: 3})

	_, err := f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{{ProductID: coffee.ID, Qty: 4}},
	})
	requireValidation(t, err)

	// Repeated lines for the same product count against stock together.
	_, err = f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{
			{ProductID: coffee.ID, Qty: 2},
			{ProductID: coffee.ID, Qty: 2},
		},
	})
	requireValidation(t, err)

	got, err := f.catalog.Get(ctx, coffee.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), got.Stock)
}

func TestCheckoutRejectsInactiveAndUnknownProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hidden := f.seed(t, catalog.Product{Name: "Hidden", Price: 100})

	_, err := f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{{ProductID: hidden.ID, Qty: 1}},
	})
	requireValidation(t, err)

	_, err = f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{{ProductID: 404, Qty: 1}},
	})
	requireValidation(t, err)
}

func TestCheckoutSnapshotsSurviveCatalogEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coffee := f.seed(t, catalog.Product{Name: "Americano", Price: 100, Category: "Coffee", IsActive: true})

	order, err := f.checkout.Checkout(ctx, checkout.Input{
		Lines: []checkout.Line{{ProductID: coffee.ID, Qty: 1}},
	})
	require.NoError(t, err)

	coffee.Name = "House Blend"
	coffee.Price = 999
	_, err = f.catalog.Update(ctx, coffee.ID, coffee)
	require.NoError(t, err)

	orders, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Americano", orders[0].Items[0].Name)
	require.Equal(t, int64(100), orders[0].Items[0].Price)
	require.Equal(t, order.Total, orders[0].Total)
}

func requireValidation(t *testing.T, err error) {
	t.Helper()
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "VALIDATION", appErr.Code)
}
