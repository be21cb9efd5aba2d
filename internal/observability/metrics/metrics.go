package metrics

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics captures invoice issuance activity.
type BillingMetrics struct {
	invoicesGenerated prometheus.Counter
	invoicesIssued    *prometheus.CounterVec
	issuedAmount      *prometheus.CounterVec
	issuedOpen        prometheus.Gauge
	requestDuration   *prometheus.HistogramVec
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the process-wide billing metrics, registering on first use.
func Billing() *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer)
	})
	return billingMetrics
}

// ResetForTest clears the singleton so tests can re-register.
func ResetForTest() {
	billingMetricsOnce = sync.Once{}
	billingMetrics = nil
}

func newBillingMetrics(registerer prometheus.Registerer) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &BillingMetrics{
		invoicesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fakturo_invoices_generated_total",
			Help: "Draft invoices produced by generation runs.",
		}),
		invoicesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fakturo_invoices_issued_total",
			Help: "Invoices issued, by currency.",
		}, []string{"currency"}),
		issuedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fakturo_issued_amount_total",
			Help: "Issued invoice amount, by currency.",
		}, []string{"currency"}),
		issuedOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fakturo_issued_invoices_open",
			Help: "Invoices currently in the issued working set.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fakturo_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint", "status"}),
	}

	for _, collector := range []prometheus.Collector{
		m.invoicesGenerated,
		m.invoicesIssued,
		m.issuedAmount,
		m.issuedOpen,
		m.requestDuration,
	} {
		if err := registerer.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}
	return m
}

// ObserveGenerated records draft invoices produced by one generation run.
func (m *BillingMetrics) ObserveGenerated(count int) {
	if m == nil {
		return
	}
	m.invoicesGenerated.Add(float64(count))
}

// ObserveIssued records a successfully issued invoice.
func (m *BillingMetrics) ObserveIssued(currency string, amount int64) {
	if m == nil {
		return
	}
	m.invoicesIssued.WithLabelValues(currency).Inc()
	m.issuedAmount.WithLabelValues(currency).Add(float64(amount))
}

// SetIssuedOpen tracks the size of the issued working set.
func (m *BillingMetrics) SetIssuedOpen(count int) {
	if m == nil {
		return
	}
	m.issuedOpen.Set(float64(count))
}

// GinMiddleware records low-cardinality HTTP latency metrics.
func GinMiddleware(m *BillingMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if strings.TrimSpace(endpoint) == "" {
			endpoint = "unmatched"
		}
		m.requestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
