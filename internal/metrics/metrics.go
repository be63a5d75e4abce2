// Package metrics declares the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicelink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoicelink_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Domain operation counters
	InvoiceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicelink_invoice_operations_total",
			Help: "Total number of invoice operations",
		},
		[]string{"operation"},
	)

	NotificationLinks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invoicelink_notification_links_total",
			Help: "Total number of notification deep links generated",
		},
	)

	PDFRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoicelink_pdf_renders_total",
			Help: "Total number of invoice PDF renders",
		},
		[]string{"result"},
	)
)

// RecordInvoiceOperation increments the counter for invoice operations.
func RecordInvoiceOperation(operation string) {
	InvoiceOperations.WithLabelValues(operation).Inc()
}
