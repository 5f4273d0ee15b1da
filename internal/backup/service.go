package backup

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/settings"
)

// FormatVersion is written into every export and accepted on import.
const FormatVersion = 1

// Document is the backup file format. Pointer collections distinguish an
// absent key (left alone on restore) from an empty one (wipes that
// collection).
type Document struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Products   *[]catalog.Product `json:"products,omitempty"`
	Orders     *[]ledger.Order    `json:"orders,omitempty"`
	Categories *[]string          `json:"categories,omitempty"`
	Store      *settings.Profile  `json:"store,omitempty"`
}

func errInvalidFile(message string) *common.AppError {
	return common.NewAppError("INVALID_FILE", message, http.StatusBadRequest, nil)
}

// Service exports and restores full application state.
type Service struct {
	Catalog  *catalog.Service
	Ledger   *ledger.Service
	Settings *settings.Service
	Events   *events.Bus
	Logger   zerolog.Logger
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Export collects everything into a single document.
func (s *Service) Export(ctx context.Context) (Document, error) {
	products, err := s.Catalog.List(ctx)
	if err != nil {
		return Document{}, err
	}
	orders, err := s.Ledger.List(ctx)
	if err != nil {
		return Document{}, err
	}
	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		return Document{}, err
	}
	profile, err := s.Settings.Get(ctx)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Version:    FormatVersion,
		ExportedAt: s.now().UTC(),
		Products:   &products,
		Orders:     &orders,
		Categories: &categories,
		Store:      &profile,
	}, nil
}

// Import restores the document. Only present keys overwrite current state;
// a document carrying none of them is rejected as invalid.
func (s *Service) Import(ctx context.Context, doc Document) error {
	if doc.Version > FormatVersion {
		return errInvalidFile("unsupported backup version")
	}
	if doc.Products == nil && doc.Orders == nil && doc.Categories == nil && doc.Store == nil {
		return errInvalidFile("backup contains no data")
	}

	if doc.Products != nil {
		if err := s.Catalog.Replace(ctx, *doc.Products); err != nil {
			return err
		}
	}
	if doc.Orders != nil {
		if err := s.Ledger.Replace(ctx, *doc.Orders); err != nil {
			return err
		}
	}
	if doc.Categories != nil {
		if err := s.Catalog.ReplaceCategories(ctx, *doc.Categories); err != nil {
			return err
		}
	}
	if doc.Store != nil {
		if err := s.Settings.Replace(ctx, *doc.Store); err != nil {
			return err
		}
	}

	s.Logger.Info().Time("exported_at", doc.ExportedAt).Msg("backup_restored")
	_ = s.Events.Emit(ctx, events.TopicDataRestored, "", nil)
	return nil
}
