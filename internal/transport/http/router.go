package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BookingAPI bundles the booking operations exposed over HTTP.
type BookingAPI interface {
	BookingCreator
	BookingCanceller
	BookingRescheduler
	BookingLister
	BookingBrowser
}

// CatalogAPI bundles the admin operations exposed over HTTP.
type CatalogAPI interface {
	ItemAdmin
	UserAdmin
}

// RouterConfig carries everything needed to assemble the HTTP surface.
type RouterConfig struct {
	Bookings     BookingAPI
	Availability AvailabilityChecker
	Catalog      CatalogAPI
	Logger       *slog.Logger
	Metrics      HTTPMetrics
	MetricsPage  http.Handler
	RateLimiter  *RateLimiter
	CORSOrigins  []string
}

// NewRouter wires handlers and middleware into a chi router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Logger != nil {
		r.Use(RequestLogger(cfg.Logger))
	}
	if cfg.Metrics != nil {
		r.Use(RequestMetrics(cfg.Metrics))
	}
	r.Use(CORS(cfg.CORSOrigins))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	r.Get("/health", HealthHandler)
	if cfg.MetricsPage != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsPage)
	}

	r.Post("/bookings", HandleCreateBooking(cfg.Bookings))
	r.Get("/bookings", HandleListBookings(cfg.Bookings))
	r.Delete("/bookings", HandleCancelBooking(cfg.Bookings))
	r.Put("/bookings/{id}", HandleRescheduleBooking(cfg.Bookings))
	r.Get("/users/{username}/bookings", HandleListUserBookings(cfg.Bookings))

	r.Get("/items/availability", HandleItemAvailability(cfg.Availability))
	r.Get("/items", HandleListItems(cfg.Catalog))
	r.Post("/items", HandleCreateItem(cfg.Catalog))
	r.Delete("/items/{id}", HandleDeleteItem(cfg.Catalog))

	r.Post("/users", HandleRegisterUser(cfg.Catalog))
	r.Get("/users", HandleListUsers(cfg.Catalog))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return r
}
