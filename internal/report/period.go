package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Calendar bucketing for reports. Weeks start on Sunday and every bucket end
// lands on 23:59:59.999 so that range checks stay inclusive on both sides.

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last represented instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfWeek returns midnight of the Sunday opening t's week.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// EndOfWeek returns the end of the Saturday closing t's week.
func EndOfWeek(t time.Time) time.Time {
	return EndOfDay(StartOfWeek(t).AddDate(0, 0, 6))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the end of the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return EndOfDay(StartOfMonth(t).AddDate(0, 1, -1))
}

// InRange reports whether t falls inside [from, to], inclusive.
func InRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

// Period kinds accepted by the report selector.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodRange = "range"
)

// Period selects the reporting window. Offset counts buckets back from now
// (0 = current); From/To are only read for the range kind.
type Period struct {
	Kind   string
	Offset int
	From   time.Time
	To     time.Time
}

// Resolve turns the selector into concrete inclusive bounds.
func (p Period) Resolve(now time.Time) (time.Time, time.Time, error) {
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	switch p.Kind {
	case PeriodDay, "":
		d := StartOfDay(now).AddDate(0, 0, -offset)
		return d, EndOfDay(d), nil
	case PeriodWeek:
		anchor := now.AddDate(0, 0, -7*offset)
		return StartOfWeek(anchor), EndOfWeek(anchor), nil
	case PeriodMonth:
		anchor := StartOfMonth(now).AddDate(0, -offset, 0)
		return anchor, EndOfMonth(anchor), nil
	case PeriodRange:
		if p.From.IsZero() || p.To.IsZero() {
			return time.Time{}, time.Time{}, common.ValidationError("range period requires from and to dates", nil)
		}
		from := StartOfDay(p.From)
		to := EndOfDay(p.To)
		// An inverted range collapses to the single day at its start.
		if to.Before(from) {
			to = EndOfDay(p.From)
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, common.ValidationError(fmt.Sprintf("unknown period %q", p.Kind), nil)
	}
}

// Option is a selectable bucket presented to the client, index 0 current.
type Option struct {
	Offset int    `json:"offset"`
	Label  string `json:"label"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// WeekOptions lists the current week and the n-1 preceding it.
func WeekOptions(now time.Time, n int) []Option {
	opts := make([]Option, 0, n)
	for i := 0; i < n; i++ {
		anchor := now.AddDate(0, 0, -7*i)
		from := StartOfWeek(anchor)
		to := EndOfWeek(anchor)
		opts = append(opts, Option{
			Offset: i,
			Label:  fmt.Sprintf("%d/%d - %d/%d", int(from.Month()), from.Day(), int(to.Month()), to.Day()),
			From:   from.Format(time.DateOnly),
			To:     to.Format(time.DateOnly),
		})
	}
	return opts
}

// MonthOptions lists the current month and the n-1 preceding it.
func MonthOptions(now time.Time, n int) []Option {
	opts := make([]Option, 0, n)
	for i := 0; i < n; i++ {
		from := StartOfMonth(now).AddDate(0, -i, 0)
		opts = append(opts, Option{
			Offset: i,
			Label:  from.Format("Jan 2006"),
			From:   from.Format(time.DateOnly),
			To:     EndOfMonth(from).Format(time.DateOnly),
		})
	}
	return opts
}

// ParseDate parses a YYYY-MM-DD query value in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, common.ValidationError("date is required", nil)
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, common.ValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s), nil)
	}
	return t, nil
}
