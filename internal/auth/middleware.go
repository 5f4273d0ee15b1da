package auth

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Middleware enforces the PIN gate on admin routes.
type Middleware struct {
	Service *Service
}

// RequireUnlock passes requests through untouched while the gate is disabled;
// otherwise a valid session token from Unlock must be presented.
func (m Middleware) RequireUnlock(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enabled, err := m.Service.Enabled(r.Context())
		if err != nil {
			common.WriteError(w, err)
			return
		}
		if !enabled {
			next.ServeHTTP(w, r)
			return
		}
		if err := m.Service.ParseSessionToken(bearerToken(r)); err != nil {
			common.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
