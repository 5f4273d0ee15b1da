package events

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier reacts to emitted events (sync scheduling, metrics, etc.).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Event describes a local mutation fanned out to notifiers.
type Event struct {
	Topic       string
	AggregateID string
	Payload     any
}

// Bus fans mutation events out to downstream handlers. Notifier failures are
// joined and reported but must never prevent the mutation they follow.
type Bus struct {
	Notifiers []Notifier
	Logger    zerolog.Logger
}

// Emit dispatches the event to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, topic, aggregateID string, payload any) error {
	if b == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	ev := Event{Topic: topic, AggregateID: aggregateID, Payload: payload}
	b.Logger.Debug().Str("topic", topic).Str("aggregate_id", aggregateID).Msg("event_emitted")

	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	if joined != nil {
		b.Logger.Warn().Err(joined).Str("topic", topic).Msg("event_notifier_failed")
	}
	return joined
}
