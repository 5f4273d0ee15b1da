package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/report"
)

// Wednesday, March 12 2025.
var wednesday = time.Date(2025, 3, 12, 15, 30, 45, 0, time.UTC)

func TestDayBounds(t *testing.T) {
	from := report.StartOfDay(wednesday)
	to := report.EndOfDay(wednesday)
	require.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2025, 3, 12, 23, 59, 59, 999000000, time.UTC), to)
}

func TestWeekStartsOnSunday(t *testing.T) {
	from := report.StartOfWeek(wednesday)
	to := report.EndOfWeek(wednesday)
	require.Equal(t, time.Sunday, from.Weekday())
	require.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Saturday, to.Weekday())
	require.Equal(t, 15, to.Day())

	// A Sunday is its own week start.
	sunday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	require.Equal(t, report.StartOfDay(sunday), report.StartOfWeek(sunday))
}

func TestMonthBounds(t *testing.T) {
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), report.StartOfMonth(wednesday))
	require.Equal(t, 31, report.EndOfMonth(wednesday).Day())

	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 29, report.EndOfMonth(feb).Day())
}

func TestInRangeIsInclusive(t *testing.T) {
	from := report.StartOfDay(wednesday)
	to := report.EndOfDay(wednesday)
	require.True(t, report.InRange(from, from, to))
	require.True(t, report.InRange(to, from, to))
	require.False(t, report.InRange(from.Add(-time.Millisecond), from, to))
	require.False(t, report.InRange(to.Add(time.Millisecond), from, to))
}

func TestResolveWeekOffset(t *testing.T) {
	p := report.Period{Kind: report.PeriodWeek, Offset: 1}
	from, to, err := p.Resolve(wednesday)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, 8, to.Day())
}

func TestResolveMonthOffsetCrossesYear(t *testing.T) {
	january := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	p := report.Period{Kind: report.PeriodMonth, Offset: 2}
	from, _, err := p.Resolve(january)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), from)
}

func TestResolveInvertedRangeCollapsesToStartDay(t *testing.T) {
	p := report.Period{
		Kind: report.PeriodRange,
		From: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	from, to, err := p.Resolve(wednesday)
	require.NoError(t, err)
	require.Equal(t, report.StartOfDay(p.From), from)
	require.Equal(t, report.EndOfDay(p.From), to)
}

func TestResolveRejectsUnknownKind(t *testing.T) {
	_, _, err := report.Period{Kind: "quarter"}.Resolve(wednesday)
	require.Error(t, err)
}

func TestResolveRangeRequiresBothDates(t *testing.T) {
	_, _, err := report.Period{Kind: report.PeriodRange, From: wednesday}.Resolve(wednesday)
	require.Error(t, err)
}

func TestWeekOptionsCurrentFirst(t *testing.T) {
	opts := report.WeekOptions(wednesday, 3)
	require.Len(t, opts, 3)
	require.Equal(t, 0, opts[0].Offset)
	require.Equal(t, "3/9 - 3/15", opts[0].Label)
	require.Equal(t, "3/2 - 3/8", opts[1].Label)
	require.Equal(t, "2025-03-09", opts[0].From)
}

func TestMonthOptionsCrossYear(t *testing.T) {
	january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	opts := report.MonthOptions(january, 3)
	require.Equal(t, "Jan 2025", opts[0].Label)
	require.Equal(t, "Dec 2024", opts[1].Label)
	require.Equal(t, "Nov 2024", opts[2].Label)
}

func TestParseDate(t *testing.T) {
	d, err := report.ParseDate("2025-03-12", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), d)

	_, err = report.ParseDate("12/03/2025", time.UTC)
	require.Error(t, err)
	_, err = report.ParseDate("", time.UTC)
	require.Error(t, err)
}
