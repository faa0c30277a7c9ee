package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout submission outcomes.
const (
	resultRedirected = "redirected"
	resultFailed     = "failed"
	resultEmpty      = "empty"
	resultConflict   = "conflict"
)

// CheckoutMetrics counts checkout submissions and promo attempts. A nil
// *CheckoutMetrics records nothing.
type CheckoutMetrics struct {
	submissions     *prometheus.CounterVec
	paymentDuration prometheus.Histogram
	promoAttempts   *prometheus.CounterVec
}

// NewCheckoutMetrics creates and registers the checkout collectors on reg.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	m := &CheckoutMetrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_submissions_total",
				Help: "Checkout submissions by outcome",
			},
			[]string{"result", "mode"},
		),
		paymentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_payment_session_duration_seconds",
			Help:    "Time spent creating payment sessions",
			Buckets: prometheus.DefBuckets,
		}),
		promoAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_promo_attempts_total",
				Help: "Promo code attempts by outcome",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.submissions, m.paymentDuration, m.promoAttempts)
	return m
}

func (m *CheckoutMetrics) submission(result string, direct bool) {
	if m == nil {
		return
	}
	mode := "cart"
	if direct {
		mode = "direct"
	}
	m.submissions.WithLabelValues(result, mode).Inc()
}

func (m *CheckoutMetrics) paymentCall(d time.Duration) {
	if m == nil {
		return
	}
	m.paymentDuration.Observe(d.Seconds())
}

func (m *CheckoutMetrics) promo(accepted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.promoAttempts.WithLabelValues(result).Inc()
}
