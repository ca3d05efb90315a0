package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring order ingestion and file delivery
var (
	WebhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Total number of storefront webhooks received, by topic and verification result",
		},
		[]string{"topic", "verified"},
	)

	OrdersIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_ingested_total",
			Help: "Total number of paid-order webhooks processed, by outcome",
		},
		[]string{"outcome"},
	)

	OrderProcessingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_processing_duration_seconds",
			Help:    "Duration of post-ack paid-order processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	ListingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_listings_total",
			Help: "Total number of order listing requests, by result",
		},
		[]string{"result"},
	)

	TicketsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "download_tickets_issued_total",
			Help: "Total number of download tickets issued",
		},
	)

	TicketsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "download_tickets_evicted_total",
			Help: "Total number of expired download tickets removed by the janitor",
		},
	)

	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloads_total",
			Help: "Total number of download redemptions, by result",
		},
		[]string{"result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of customer emails attempted, by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	RegisterWith(prometheus.DefaultRegisterer)
}

// RegisterWith registers all metrics on reg.
func RegisterWith(reg prometheus.Registerer) {
	reg.MustRegister(WebhooksReceivedTotal)
	reg.MustRegister(OrdersIngestedTotal)
	reg.MustRegister(OrderProcessingDuration)
	reg.MustRegister(ListingsTotal)
	reg.MustRegister(TicketsIssuedTotal)
	reg.MustRegister(TicketsEvictedTotal)
	reg.MustRegister(DownloadsTotal)
	reg.MustRegister(NotificationsTotal)
	reg.MustRegister(HTTPRequestDuration)
}

// NewCountGauge exposes count as a gauge read at scrape time.
func NewCountGauge(name, help string, count func() int) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{Name: name, Help: help},
		func() float64 { return float64(count()) },
	)
}

// Bool renders a label value for boolean dimensions.
func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
