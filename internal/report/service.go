package report

import (
	"context"
	"time"

	"github.com/noah-isme/backend-pos/internal/ledger"
)

const defaultOptionCount = 12

// Service builds reports from the order ledger.
type Service struct {
	Ledger      *ledger.Service
	Now         func() time.Time
	OptionCount int
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) optionCount() int {
	if s.OptionCount > 0 {
		return s.OptionCount
	}
	return defaultOptionCount
}

// BuildReport resolves the period against the current clock and aggregates
// every matching order.
func (s *Service) BuildReport(ctx context.Context, p Period) (Report, error) {
	from, to, err := p.Resolve(s.now())
	if err != nil {
		return Report{}, err
	}
	orders, err := s.Ledger.List(ctx)
	if err != nil {
		return Report{}, err
	}
	return Build(orders, from, to), nil
}

// Options carries the selectable week and month buckets.
type Options struct {
	Weeks  []Option `json:"weeks"`
	Months []Option `json:"months"`
}

// BuildOptions lists the selectable buckets, current first.
func (s *Service) BuildOptions() Options {
	now := s.now()
	n := s.optionCount()
	return Options{
		Weeks:  WeekOptions(now, n),
		Months: MonthOptions(now, n),
	}
}

// OrdersIn returns the raw orders inside the resolved period, newest first,
// for the export surface.
func (s *Service) OrdersIn(ctx context.Context, p Period) ([]ledger.Order, time.Time, time.Time, error) {
	from, to, err := p.Resolve(s.now())
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	orders, err := s.Ledger.List(ctx)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return FilterInRange(orders, from, to), from, to, nil
}
