package settings

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/store"
)

// Profile is the store identity printed on receipts plus the admin gate flag.
type Profile struct {
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
	PINDisabled bool   `json:"pinDisabled"`
}

// DefaultProfile is returned until the first save.
var DefaultProfile = Profile{Name: "My Store"}

// Service owns the store profile blob.
type Service struct {
	Store  *store.Store
	Events *events.Bus
	Logger zerolog.Logger

	mu sync.Mutex
}

// Get returns the stored profile, falling back to defaults field by field.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	profile := DefaultProfile
	if _, err := s.Store.GetJSON(ctx, store.KeyProfile, &profile); err != nil {
		return Profile{}, fmt.Errorf("settings: load profile: %w", err)
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = DefaultProfile.Name
	}
	return profile, nil
}

// Save replaces the profile.
func (s *Service) Save(ctx context.Context, profile Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return Profile{}, common.ValidationError("store name is required", nil)
	}
	if err := s.Store.SetJSON(ctx, store.KeyProfile, profile); err != nil {
		return Profile{}, fmt.Errorf("settings: save profile: %w", err)
	}
	s.Logger.Info().Str("store_name", profile.Name).Msg("profile_saved")
	_ = s.Events.Emit(ctx, events.TopicSettingsChanged, "", nil)
	return profile, nil
}

// Replace swaps the profile blob, used by backup restore and cloud pull.
func (s *Service) Replace(ctx context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.SetJSON(ctx, store.KeyProfile, profile); err != nil {
		return fmt.Errorf("settings: replace profile: %w", err)
	}
	return nil
}
