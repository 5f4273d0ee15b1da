package report

import (
	"sort"
	"time"

	"github.com/noah-isme/backend-pos/internal/ledger"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// MethodStat counts orders and revenue for one payment method.
type MethodStat struct {
	Count int64         `json:"count"`
	Total pricing.Money `json:"total"`
}

// ProductStat aggregates sold quantity and revenue for one product line.
type ProductStat struct {
	Name    string        `json:"name"`
	Qty     int64         `json:"qty"`
	Revenue pricing.Money `json:"revenue"`
}

// CategoryStat aggregates sold quantity and revenue for one category.
type CategoryStat struct {
	Category string        `json:"category"`
	Qty      int64         `json:"qty"`
	Revenue  pricing.Money `json:"revenue"`
}

// Report is the aggregate over all orders inside one period.
type Report struct {
	From       time.Time             `json:"from"`
	To         time.Time             `json:"to"`
	Count      int64                 `json:"count"`
	Total      pricing.Money         `json:"total"`
	Breakdown  map[string]MethodStat `json:"paymentBreakdown"`
	ByProduct  []ProductStat         `json:"byProduct"`
	ByCategory []CategoryStat        `json:"byCategory"`
}

// FilterInRange keeps orders created inside [from, to].
func FilterInRange(orders []ledger.Order, from, to time.Time) []ledger.Order {
	out := make([]ledger.Order, 0, len(orders))
	for _, o := range orders {
		if InRange(o.CreatedAt, from, to) {
			out = append(out, o)
		}
	}
	return out
}

// Build aggregates the given orders into a report over [from, to].
func Build(orders []ledger.Order, from, to time.Time) Report {
	matched := FilterInRange(orders, from, to)

	rep := Report{
		From:      from,
		To:        to,
		Count:     int64(len(matched)),
		Breakdown: emptyBreakdown(),
	}
	for _, o := range matched {
		rep.Total += o.Total
		method := ledger.NormalizePaymentMethod(o.PaymentMethod)
		stat := rep.Breakdown[method]
		stat.Count++
		stat.Total += o.Total
		rep.Breakdown[method] = stat
	}
	rep.ByProduct, rep.ByCategory = ProductAnalysis(matched)
	return rep
}

// DailyReport aggregates the day containing t.
func DailyReport(orders []ledger.Order, t time.Time) Report {
	return Build(orders, StartOfDay(t), EndOfDay(t))
}

// WeeklyReport aggregates the week containing t.
func WeeklyReport(orders []ledger.Order, t time.Time) Report {
	return Build(orders, StartOfWeek(t), EndOfWeek(t))
}

// MonthlyReport aggregates the month containing t.
func MonthlyReport(orders []ledger.Order, t time.Time) Report {
	return Build(orders, StartOfMonth(t), EndOfMonth(t))
}

// emptyBreakdown seeds every accepted method so clients never see missing keys.
func emptyBreakdown() map[string]MethodStat {
	b := make(map[string]MethodStat, len(ledger.PaymentMethods))
	for _, m := range ledger.PaymentMethods {
		b[m] = MethodStat{}
	}
	return b
}

// ProductAnalysis rolls order lines up by product and by category. Products
// are keyed by id when present, falling back to name, so renamed products
// with stable ids still merge. Lines with an empty category are left out of
// the category rollup entirely. Both slices come back sorted by revenue
// descending with ties keeping first-seen order.
func ProductAnalysis(orders []ledger.Order) ([]ProductStat, []CategoryStat) {
	type key struct {
		id   int64
		name string
	}
	productIdx := make(map[key]int)
	categoryIdx := make(map[string]int)
	products := []ProductStat{}
	categories := []CategoryStat{}

	for _, o := range orders {
		for _, it := range o.Items {
			if it.Qty <= 0 {
				continue
			}
			revenue := it.Price * it.Qty

			k := key{id: it.ProductID}
			if k.id == 0 {
				k.name = it.Name
			}
			i, ok := productIdx[k]
			if !ok {
				i = len(products)
				productIdx[k] = i
				products = append(products, ProductStat{Name: it.Name})
			}
			products[i].Qty += it.Qty
			products[i].Revenue += revenue

			if it.Category != "" {
				j, ok := categoryIdx[it.Category]
				if !ok {
					j = len(categories)
					categoryIdx[it.Category] = j
					categories = append(categories, CategoryStat{Category: it.Category})
				}
				categories[j].Qty += it.Qty
				categories[j].Revenue += revenue
			}
		}
	}

	sort.SliceStable(products, func(a, b int) bool { return products[a].Revenue > products[b].Revenue })
	sort.SliceStable(categories, func(a, b int) bool { return categories[a].Revenue > categories[b].Revenue })
	return products, categories
}

// RevenueShare returns part/total as a percentage, zero when total is zero.
func RevenueShare(part, total pricing.Money) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
