package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// POSMetrics records the counters exposed by the point-of-sale core.
type POSMetrics struct {
	ordersCreated        prometheus.Counter
	paymentsProcessed    *prometheus.CounterVec
	paymentsRefunded     prometheus.Counter
	qrScans              *prometheus.CounterVec
	settlementsProcessed prometheus.Counter
}

// NewPOSMetrics registers the POS metrics on the provided registerer.
func NewPOSMetrics(reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		return &POSMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created at the checkout counters.",
	})
	paymentsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_processed_total",
		Help: "Successful payments by tender method.",
	}, []string{"method"})
	paymentsRefunded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_refunded_total",
		Help: "Refund counter-entries recorded.",
	})
	qrScans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_scans_total",
		Help: "QR scan attempts by result.",
	}, []string{"result"})
	settlementsProcessed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlements_processed_total",
		Help: "Monthly settlements marked as paid out.",
	})
	reg.MustRegister(ordersCreated, paymentsProcessed, paymentsRefunded, qrScans, settlementsProcessed)
	return &POSMetrics{
		ordersCreated:        ordersCreated,
		paymentsProcessed:    paymentsProcessed,
		paymentsRefunded:     paymentsRefunded,
		qrScans:              qrScans,
		settlementsProcessed: settlementsProcessed,
	}
}

// IncOrderCreated increments the order creation counter.
func (p *POSMetrics) IncOrderCreated() {
	if p == nil || p.ordersCreated == nil {
		return
	}
	p.ordersCreated.Inc()
}

// IncPaymentProcessed increments the payment counter for the given method.
func (p *POSMetrics) IncPaymentProcessed(method string) {
	if p == nil || p.paymentsProcessed == nil {
		return
	}
	p.paymentsProcessed.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncPaymentRefunded increments the refund counter.
func (p *POSMetrics) IncPaymentRefunded() {
	if p == nil || p.paymentsRefunded == nil {
		return
	}
	p.paymentsRefunded.Inc()
}

// IncQRScan increments the scan counter for the given result.
func (p *POSMetrics) IncQRScan(result string) {
	if p == nil || p.qrScans == nil {
		return
	}
	p.qrScans.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncSettlementProcessed increments the settlement payout counter.
func (p *POSMetrics) IncSettlementProcessed() {
	if p == nil || p.settlementsProcessed == nil {
		return
	}
	p.settlementsProcessed.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
