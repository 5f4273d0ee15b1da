package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/store"
)

func newService(t *testing.T) *ledger.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &ledger.Service{
		Store:  store.New(client),
		Events: &events.Bus{Logger: zerolog.Nop()},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
}

func TestCreatePrependsAndNormalizesPayment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, ledger.CreateInput{
		Items:         []ledger.Item{{Name: "Americano", Price: 100, Qty: 1}},
		Subtotal:      100,
		Total:         100,
		PaymentMethod: "bitcoin",
	})
	require.NoError(t, err)
	require.Equal(t, ledger.PaymentCash, first.PaymentMethod)
	require.NotEmpty(t, first.ID)

	second, err := svc.Create(ctx, ledger.CreateInput{
		Items:         []ledger.Item{{Name: "Latte", Price: 120, Qty: 1}},
		Subtotal:      120,
		Total:         120,
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)
	require.Equal(t, ledger.PaymentCard, second.PaymentMethod)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, second.ID, orders[0].ID)
	require.Equal(t, first.ID, orders[1].ID)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, ledger.CreateInput{
		Items:         []ledger.Item{{Name: "Tea", Price: 80, Qty: 2}},
		Subtotal:      160,
		Discount:      &pricing.Discount{Type: pricing.DiscountAmount, Value: 10},
		Total:         150,
		Note:          "original",
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	note := "edited"
	updated, err := svc.Update(ctx, order.ID, ledger.Patch{Note: &note})
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Note)
	require.Equal(t, order.Total, updated.Total)
	require.Equal(t, order.Discount, updated.Discount)
	require.Equal(t, order.Items, updated.Items)
}

func TestUpdateCanClearDiscount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, ledger.CreateInput{
		Items:    []ledger.Item{{Name: "Tea", Price: 80, Qty: 1}},
		Subtotal: 80,
		Discount: &pricing.Discount{Type: pricing.DiscountPercent, Value: 10},
		Total:    72,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, order.ID, ledger.Patch{ClearDiscount: true})
	require.NoError(t, err)
	require.Nil(t, updated.Discount)
}

func TestUpdateUnknownOrder(t *testing.T) {
	svc := newService(t)
	note := "x"
	_, err := svc.Update(context.Background(), "missing", ledger.Patch{Note: &note})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, ledger.CreateInput{
		Items:    []ledger.Item{{Name: "Tea", Price: 80, Qty: 1}},
		Subtotal: 80,
		Total:    80,
	})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = svc.Delete(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, removed)

	orders, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreateEmitsEvent(t *testing.T) {
	svc := newService(t)
	notifier := &topicRecorder{}
	svc.Events = &events.Bus{Notifiers: []events.Notifier{notifier}, Logger: zerolog.Nop()}

	_, err := svc.Create(context.Background(), ledger.CreateInput{
		Items:    []ledger.Item{{Name: "Tea", Price: 80, Qty: 1}},
		Subtotal: 80,
		Total:    80,
	})
	require.NoError(t, err)
	require.Equal(t, []string{events.TopicOrderCreated}, notifier.topics)
}

type topicRecorder struct {
	topics []string
}

func (r *topicRecorder) Notify(_ context.Context, ev events.Event) error {
	r.topics = append(r.topics, ev.Topic)
	return nil
}
