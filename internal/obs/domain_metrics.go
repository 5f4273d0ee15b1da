package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts orders recorded by the ledger, by payment method.
	OrdersCreatedTotal *prometheus.CounterVec
	// CheckoutRejectedTotal counts checkout validation rejections by reason.
	CheckoutRejectedTotal *prometheus.CounterVec
	// StockDepletedTotal counts stock decrements that drained a product to zero.
	StockDepletedTotal prometheus.Counter
	// SyncPushTotal tracks remote snapshot push outcomes.
	SyncPushTotal *prometheus.CounterVec
	// SyncPushLatency records snapshot push latency in milliseconds.
	SyncPushLatency prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of orders recorded by the ledger.",
		}, []string{"payment_method"})
		CheckoutRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_rejected_total",
			Help:      "Count of checkout attempts rejected before any mutation.",
		}, []string{"reason"})
		StockDepletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_depleted_total",
			Help:      "Count of stock decrements that left a tracked product at zero.",
		})
		SyncPushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_push_total",
			Help:      "Count of remote snapshot push outcomes.",
		}, []string{"result"})
		SyncPushLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_push_duration_ms",
			Help:      "Latency of remote snapshot pushes in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		})
		reg.MustRegister(OrdersCreatedTotal, CheckoutRejectedTotal, StockDepletedTotal, SyncPushTotal, SyncPushLatency)
	})
}
