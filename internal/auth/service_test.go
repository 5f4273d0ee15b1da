package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/auth"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/settings"
	"github.com/noah-isme/backend-pos/internal/store"
)

func newService(t *testing.T) (*auth.Service, *settings.Service) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	st := store.New(client)
	profile := &settings.Service{Store: st, Events: &events.Bus{Logger: zerolog.Nop()}, Logger: zerolog.Nop()}
	return &auth.Service{
		Store:      st,
		Profile:    profile,
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		SessionTTL: 15 * time.Minute,
		Logger:     zerolog.Nop(),
	}, profile
}

func TestSetPINRequiresMinimumLength(t *testing.T) {
	svc, _ := newService(t)
	require.Error(t, svc.SetPIN(context.Background(), "", "123"))
	require.NoError(t, svc.SetPIN(context.Background(), "", "1234"))
}

func TestRotatePINRequiresCurrent(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))

	require.Error(t, svc.SetPIN(ctx, "9999", "5678"))
	require.NoError(t, svc.SetPIN(ctx, "1234", "5678"))

	_, _, err := svc.Unlock(ctx, "5678")
	require.NoError(t, err)
}

func TestUnlockIssuesValidToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))

	token, expiresAt, err := svc.Unlock(ctx, "1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))
	require.NoError(t, svc.ParseSessionToken(token))
}

func TestUnlockRejectsWrongPIN(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))

	_, _, err := svc.Unlock(ctx, "0000")
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))

	past := time.Now().Add(-time.Hour)
	svc.Now = func() time.Time { return past }
	token, _, err := svc.Unlock(ctx, "1234")
	require.NoError(t, err)

	svc.Now = nil
	require.Error(t, svc.ParseSessionToken(token))
}

func TestTamperedTokenRejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))

	token, _, err := svc.Unlock(ctx, "1234")
	require.NoError(t, err)
	require.Error(t, svc.ParseSessionToken(token+"x"))
}

func TestRequireUnlockPassesWhileGateDisabled(t *testing.T) {
	svc, profile := newService(t)
	ctx := context.Background()

	mw := auth.Middleware{Service: svc}
	handler := mw.RequireUnlock(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// No PIN configured yet.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// PIN set: gate closes without a token.
	require.NoError(t, svc.SetPIN(ctx, "", "1234"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token opens it.
	token, _, err := svc.Unlock(ctx, "1234")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Profile switch disables the gate entirely.
	_, err = profile.Save(ctx, settings.Profile{Name: "Shop", PINDisabled: true})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
