package remote

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/settings"
)

const defaultDebounce = 1500 * time.Millisecond

// Status reports the syncer's view of the world for the status endpoint.
type Status struct {
	Enabled    bool      `json:"enabled"`
	Pending    bool      `json:"pending"`
	LastPushAt time.Time `json:"lastPushAt"`
	LastResult string    `json:"lastResult,omitempty"`
}

// Syncer debounces local mutations into snapshot pushes. Every burst of
// writes collapses into a single upload once the quiet period elapses; a new
// write while the timer runs cancels and reschedules it. With no client
// configured the syncer degrades silently to local-only operation.
type Syncer struct {
	Client   *Client
	Catalog  *catalog.Service
	Ledger   *ledger.Service
	Settings *settings.Service
	Debounce time.Duration
	Logger   zerolog.Logger

	mu             sync.Mutex
	timer          *time.Timer
	gen            uint64
	lastPushAt     time.Time
	lastResult     string
	lastMutationAt time.Time
}

func (s *Syncer) debounce() time.Duration {
	if s.Debounce > 0 {
		return s.Debounce
	}
	return defaultDebounce
}

// Notify implements events.Notifier. Any mutation stamps the local-change
// clock and schedules a push.
func (s *Syncer) Notify(_ context.Context, _ events.Event) error {
	s.mu.Lock()
	s.lastMutationAt = time.Now()
	s.mu.Unlock()
	s.Schedule()
	return nil
}

// Schedule arms the debounce timer, cancelling any pending one. Each armed
// timer carries a generation so a push that is already in flight cannot
// clobber a timer armed after it.
func (s *Syncer) Schedule() {
	if s.Client == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce(), func() {
		s.mu.Lock()
		if s.gen == gen {
			s.timer = nil
		}
		s.mu.Unlock()
		s.PushNow(context.Background())
	})
}

// Flush cancels any pending timer and pushes immediately.
func (s *Syncer) Flush(ctx context.Context) {
	if s.Client == nil {
		return
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.gen++
	}
	s.mu.Unlock()
	s.PushNow(ctx)
}

// PushNow builds a snapshot and uploads it.
func (s *Syncer) PushNow(ctx context.Context) {
	if s.Client == nil {
		return
	}
	start := time.Now()
	err := s.push(ctx)
	if obs.SyncPushLatency != nil {
		obs.SyncPushLatency.Observe(obs.DurationMillis(time.Since(start)))
	}

	result := "ok"
	if err != nil {
		result = "error"
		s.Logger.Warn().Err(err).Msg("sync_push_failed")
	} else {
		s.Logger.Debug().Msg("sync_push_ok")
	}
	if obs.SyncPushTotal != nil {
		obs.SyncPushTotal.WithLabelValues(result).Inc()
	}

	s.mu.Lock()
	s.lastPushAt = time.Now()
	s.lastResult = result
	s.mu.Unlock()
}

func (s *Syncer) push(ctx context.Context) error {
	snap, err := s.buildSnapshot(ctx)
	if err != nil {
		return err
	}
	return s.Client.Push(ctx, snap)
}

func (s *Syncer) buildSnapshot(ctx context.Context) (Snapshot, error) {
	products, err := s.Catalog.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	orders, err := s.Ledger.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	profile, err := s.Settings.Get(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Products:   products,
		Orders:     orders,
		Categories: categories,
		Store:      profile,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// PullAndApply fetches the remote snapshot and replaces local state with it.
// Returns false when the remote has nothing, or when the snapshot is not
// newer than the last local mutation: last write wins, so a stale snapshot
// observed by the poller must never erase local changes made after it.
func (s *Syncer) PullAndApply(ctx context.Context) (bool, error) {
	if s.Client == nil {
		return false, nil
	}
	snap, err := s.Client.Pull(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}
	s.mu.Lock()
	lastMutation := s.lastMutationAt
	s.mu.Unlock()
	if !lastMutation.IsZero() && !snap.UpdatedAt.After(lastMutation) {
		s.Logger.Debug().Time("remote_updated_at", snap.UpdatedAt).Msg("sync_pull_stale_skipped")
		return false, nil
	}
	if err := s.Catalog.Replace(ctx, snap.Products); err != nil {
		return false, err
	}
	if err := s.Ledger.Replace(ctx, snap.Orders); err != nil {
		return false, err
	}
	if err := s.Catalog.ReplaceCategories(ctx, snap.Categories); err != nil {
		return false, err
	}
	if err := s.Settings.Replace(ctx, snap.Store); err != nil {
		return false, err
	}
	s.mu.Lock()
	if snap.UpdatedAt.After(s.lastMutationAt) {
		s.lastMutationAt = snap.UpdatedAt
	}
	s.mu.Unlock()
	s.Logger.Info().Time("remote_updated_at", snap.UpdatedAt).Msg("sync_pull_applied")
	return true, nil
}

// RunPoller periodically pulls remote changes until the context is cancelled.
// An interval of zero disables polling.
func (s *Syncer) RunPoller(ctx context.Context, interval time.Duration) {
	if s.Client == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PullAndApply(ctx); err != nil {
				s.Logger.Warn().Err(err).Msg("sync_poll_failed")
			}
		}
	}
}

// Status snapshots the syncer state.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Enabled:    s.Client != nil,
		Pending:    s.timer != nil,
		LastPushAt: s.lastPushAt,
		LastResult: s.lastResult,
	}
}
