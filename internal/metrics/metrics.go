// Package metrics collects and exposes Prometheus metrics for the
// booking service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts booking outcomes and HTTP traffic.
type Collector struct {
	bookingsCreated     prometheus.Counter
	bookingsCancelled   prometheus.Counter
	bookingsRescheduled prometheus.Counter
	bookingConflicts    prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpLatency         prometheus.Histogram
}

// NewCollector registers the booking metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_created_total",
			Help: "Number of reservations created.",
		}),
		bookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_cancelled_total",
			Help: "Number of reservations cancelled.",
		}),
		bookingsRescheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_rescheduled_total",
			Help: "Number of reservations rescheduled.",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_conflict_total",
			Help: "Number of bookings rejected due to an interval conflict.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_http_requests_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.bookingsCreated,
		c.bookingsCancelled,
		c.bookingsRescheduled,
		c.bookingConflicts,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) BookingCreated() {
	c.bookingsCreated.Inc()
}

func (c *Collector) BookingCancelled() {
	c.bookingsCancelled.Inc()
}

func (c *Collector) BookingRescheduled() {
	c.bookingsRescheduled.Inc()
}

func (c *Collector) BookingConflict() {
	c.bookingConflicts.Inc()
}

// RecordHTTP records one finished request.
func (c *Collector) RecordHTTP(statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
