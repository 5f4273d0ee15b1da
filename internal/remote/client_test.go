package remote_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/remote"
	"github.com/noah-isme/backend-pos/internal/resilience"
)

func TestPullDecodesBodyDeliveredAfterHeaders(t *testing.T) {
	products := make([]catalog.Product, 500)
	for i := range products {
		products[i] = catalog.Product{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("Product %d", i+1),
			Description: "a reasonably long description to pad the snapshot payload",
			Price:       100,
			IsActive:    true,
		}
	}
	snap := remote.Snapshot{Products: products, UpdatedAt: time.Now().UTC()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(snap)
	}))
	defer srv.Close()

	c := &remote.Client{
		Endpoint: srv.URL,
		StoreKey: "test-key",
		HTTP: resilience.HTTPClient{
			Client:      srv.Client(),
			MaxAttempts: 1,
			Timeout:     5 * time.Second,
		},
	}

	got, err := c.Pull(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Products, 500)
	require.Equal(t, "Product 500", got.Products[499].Name)
}
