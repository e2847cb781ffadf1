package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.BookingCreated()
	c.BookingCreated()
	c.BookingCancelled()
	c.BookingRescheduled()
	c.BookingConflict()

	if got := testutil.ToFloat64(c.bookingsCreated); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(c.bookingsCancelled); got != 1 {
		t.Fatalf("expected 1 cancelled, got %v", got)
	}
	if got := testutil.ToFloat64(c.bookingsRescheduled); got != 1 {
		t.Fatalf("expected 1 rescheduled, got %v", got)
	}
	if got := testutil.ToFloat64(c.bookingConflicts); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestCollectorExposition(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.BookingCreated()
	c.RecordHTTP(201, 15*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "booking_created_total 1") {
		t.Fatalf("expected created counter in exposition, got %q", body)
	}
	if !strings.Contains(body, `booking_http_requests_total{status_code="201"} 1`) {
		t.Fatalf("expected http counter in exposition, got %q", body)
	}
}
