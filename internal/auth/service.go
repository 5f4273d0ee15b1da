package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/settings"
	"github.com/noah-isme/backend-pos/internal/store"
)

const (
	minPINLength   = 4
	sessionSubject = "admin"
	tokenIssuer    = "backend-pos"
)

// Service guards the admin surface behind a store PIN. The PIN hash lives
// locally and is never included in sync snapshots or backups.
type Service struct {
	Store      *store.Store
	Profile    *settings.Service
	Secret     []byte
	SessionTTL time.Duration
	Logger     zerolog.Logger
	Now        func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// HasPIN reports whether a PIN has been set.
func (s *Service) HasPIN(ctx context.Context) (bool, error) {
	hash, found, err := s.Store.GetString(ctx, store.KeyPIN)
	if err != nil {
		return false, fmt.Errorf("auth: load pin: %w", err)
	}
	return found && hash != "", nil
}

// Enabled reports whether the gate is active: a PIN exists and the profile
// has not switched it off.
func (s *Service) Enabled(ctx context.Context) (bool, error) {
	profile, err := s.Profile.Get(ctx)
	if err != nil {
		return false, err
	}
	if profile.PINDisabled {
		return false, nil
	}
	return s.HasPIN(ctx)
}

// SetPIN sets or rotates the store PIN. Rotation requires the current PIN.
func (s *Service) SetPIN(ctx context.Context, current, next string) error {
	next = strings.TrimSpace(next)
	if len(next) < minPINLength {
		return common.ValidationError(fmt.Sprintf("pin must be at least %d characters", minPINLength), nil)
	}

	existing, found, err := s.Store.GetString(ctx, store.KeyPIN)
	if err != nil {
		return fmt.Errorf("auth: load pin: %w", err)
	}
	if found && existing != "" {
		ok, err := argon2id.ComparePasswordAndHash(current, existing)
		if err != nil {
			return fmt.Errorf("auth: compare pin: %w", err)
		}
		if !ok {
			return common.NewAppError("UNAUTHORIZED", "current pin is incorrect", http.StatusUnauthorized, nil)
		}
	}

	hash, err := argon2id.CreateHash(next, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("auth: hash pin: %w", err)
	}
	if err := s.Store.SetString(ctx, store.KeyPIN, hash); err != nil {
		return fmt.Errorf("auth: save pin: %w", err)
	}
	s.Logger.Info().Msg("pin_updated")
	return nil
}

// Unlock verifies the PIN and issues a short-lived session token.
func (s *Service) Unlock(ctx context.Context, pin string) (string, time.Time, error) {
	hash, found, err := s.Store.GetString(ctx, store.KeyPIN)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: load pin: %w", err)
	}
	if !found || hash == "" {
		return "", time.Time{}, common.ValidationError("no pin configured", nil)
	}
	ok, err := argon2id.ComparePasswordAndHash(pin, hash)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: compare pin: %w", err)
	}
	if !ok {
		s.Logger.Warn().Msg("unlock_rejected")
		return "", time.Time{}, common.NewAppError("UNAUTHORIZED", "incorrect pin", http.StatusUnauthorized, nil)
	}
	return s.signSessionToken()
}

func (s *Service) signSessionToken() (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.SessionTTL)
	token, err := jwt.NewBuilder().
		Subject(sessionSubject).
		Issuer(tokenIssuer).
		IssuedAt(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: build token: %w", err)
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return string(signed), expiresAt, nil
}

// ParseSessionToken validates a session token issued by Unlock.
func (s *Service) ParseSessionToken(token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	parsed, err := jwt.ParseString(trimmed,
		jwt.WithKey(jwa.HS256, s.Secret),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, err)
	}
	if parsed.Subject() != sessionSubject {
		return common.NewAppError("UNAUTHORIZED", "invalid token", http.StatusUnauthorized, nil)
	}
	return nil
}
