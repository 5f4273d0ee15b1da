package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/backend-pos/internal/ledger"
)

// BOM makes Excel detect UTF-8 when opening exported files.
const bom = "\uFEFF"

// BuildCSV renders rows as a UTF-8 CSV string with CRLF line endings. Cells
// containing quotes, commas, or line breaks are quoted with embedded quotes
// doubled.
func BuildCSV(rows [][]string) string {
	var b strings.Builder
	b.WriteString(bom)
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\r\n")
		}
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeCell(cell))
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	if strings.ContainsAny(s, "\",\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// ReportRows lays out a period's orders for the report export: a header, one
// row per order, a blank spacer, and a summary row.
func ReportRows(orders []ledger.Order) [][]string {
	rows := [][]string{{"Time", "Order ID", "Amount", "Payment Method"}}
	var total int64
	for _, o := range orders {
		total += o.Total
		rows = append(rows, []string{
			o.CreatedAt.Format("2006-01-02 15:04"),
			"#" + shortID(o.ID),
			fmt.Sprintf("%d", o.Total),
			o.PaymentMethod,
		})
	}
	rows = append(rows, []string{})
	rows = append(rows, []string{"", fmt.Sprintf("Orders: %d", len(orders)), fmt.Sprintf("Total: %d", total), ""})
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Filename names the download after the covered period.
func Filename(from, to time.Time) string {
	f := from.Format(time.DateOnly)
	t := to.Format(time.DateOnly)
	if f == t {
		return "report-" + f + ".csv"
	}
	return "report-" + f + "_" + t + ".csv"
}
