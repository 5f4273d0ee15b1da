package export_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/export"
	"github.com/noah-isme/backend-pos/internal/ledger"
)

func TestBuildCSVStartsWithBOMAndUsesCRLF(t *testing.T) {
	csv := export.BuildCSV([][]string{{"a", "b"}, {"c", "d"}})
	require.True(t, strings.HasPrefix(csv, "\uFEFF"))
	require.Equal(t, "\uFEFFa,b\r\nc,d", csv)
}

func TestBuildCSVQuotesSpecialCells(t *testing.T) {
	csv := export.BuildCSV([][]string{{`say "hi"`, "a,b", "line\nbreak", "plain"}})
	require.Equal(t, "\uFEFF\"say \"\"hi\"\"\",\"a,b\",\"line\nbreak\",plain", csv)
}

func TestReportRowsLayout(t *testing.T) {
	orders := []ledger.Order{
		{
			ID:            "m8abc123-deadbeef",
			Total:         225,
			PaymentMethod: "card",
			CreatedAt:     time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:            "short",
			Total:         100,
			PaymentMethod: "cash",
			CreatedAt:     time.Date(2025, 3, 12, 14, 5, 0, 0, time.UTC),
		},
	}
	rows := export.ReportRows(orders)
	require.Len(t, rows, 5)
	require.Equal(t, []string{"Time", "Order ID", "Amount", "Payment Method"}, rows[0])
	require.Equal(t, []string{"2025-03-12 09:30", "#m8abc123", "225", "card"}, rows[1])
	require.Equal(t, []string{"2025-03-12 14:05", "#short", "100", "cash"}, rows[2])
	require.Empty(t, rows[3])
	require.Equal(t, []string{"", "Orders: 2", "Total: 325", ""}, rows[4])
}

func TestFilename(t *testing.T) {
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "report-2025-03-12.csv", export.Filename(day, day.Add(23*time.Hour)))
	require.Equal(t, "report-2025-03-01_2025-03-12.csv", export.Filename(day.AddDate(0, 0, -11), day))
}
