package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pBarszczewska/booking-api/internal/app"
	"github.com/pBarszczewska/booking-api/internal/domain"
)

func TestHandleCreateBooking(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	successReservation := domain.Reservation{
		ID:       "res-123",
		Username: "alice",
		ItemName: "Meeting Room",
		Email:    "alice@example.com",
		StartAt:  start,
		EndAt:    start.Add(2 * time.Hour),
	}

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"username":"alice","item_name":"Meeting Room","email":"alice@example.com","start_local":"2025-06-02T14:00:00","duration_hours":2}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"id":"res-123"`,
		},
		{
			name:           "invalid json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"username":"alice","color":"red"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user not found",
			body:           `{"username":"nobody","item_name":"Meeting Room","email":"a@b.c","start_local":"2025-06-02T14:00:00"}`,
			serviceErr:     domain.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "item not found",
			body:           `{"username":"alice","item_name":"Submarine","email":"a@b.c","start_local":"2025-06-02T14:00:00"}`,
			serviceErr:     domain.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid interval",
			body:           `{"username":"alice","item_name":"Meeting Room","email":"a@b.c","start_local":"not a time"}`,
			serviceErr:     domain.ErrInvalidInterval,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           `{"username":"alice","item_name":"Meeting Room","email":"nope","start_local":"2025-06-02T14:00:00"}`,
			serviceErr:     domain.ErrInvalidEmail,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict with blocking booking",
			body: `{"username":"alice","item_name":"Meeting Room","email":"a@b.c","start_local":"2025-06-02T14:00:00"}`,
			serviceErr: &domain.ConflictError{Blocking: domain.ReservationSummary{
				ID:       "res-9",
				ItemName: "Meeting Room",
				StartAt:  start,
				EndAt:    start.Add(time.Hour),
			}},
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"id":"res-9"`,
		},
		{
			name:           "storage unavailable",
			body:           `{"username":"alice","item_name":"Meeting Room","email":"a@b.c","start_local":"2025-06-02T14:00:00"}`,
			serviceErr:     domain.ErrUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "internal error",
			body:           `{"username":"alice","item_name":"Meeting Room","email":"a@b.c","start_local":"2025-06-02T14:00:00"}`,
			serviceErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubBookingService{
				reservation: successReservation,
				err:         tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler := HandleCreateBooking(svc)
			handler.ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

func TestHandleCancelBooking(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	cancelled := domain.Reservation{
		ID:       "res-123",
		Username: "alice",
		ItemName: "Meeting Room",
		StartAt:  start,
		EndAt:    start.Add(time.Hour),
	}

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{cancelResult: app.CancelResult{Cancelled: &cancelled}}
		req := httptest.NewRequest(http.MethodDelete, "/bookings?id=res-123", nil)
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"id":"res-123"`) {
			t.Fatalf("expected cancelled booking in response, got %q", rec.Body.String())
		}
		if svc.cancelInput.ReservationID != "res-123" {
			t.Fatalf("expected id selector to reach service, got %q", svc.cancelInput.ReservationID)
		}
	})

	t.Run("ambiguous username returns candidates", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{cancelResult: app.CancelResult{Ambiguous: []domain.ReservationSummary{
			{ID: "res-1", ItemName: "Meeting Room", StartAt: start, EndAt: start.Add(time.Hour)},
			{ID: "res-2", ItemName: "Projector", StartAt: start.Add(2 * time.Hour), EndAt: start.Add(3 * time.Hour)},
		}}}
		req := httptest.NewRequest(http.MethodDelete, "/bookings?username=alice", nil)
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusMultipleChoices {
			t.Fatalf("expected status 300, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"res-1"`) || !strings.Contains(body, `"res-2"`) {
			t.Fatalf("expected both candidates in response, got %q", body)
		}
	})

	t.Run("both selectors rejected", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{err: domain.ErrInvalidRequest}
		req := httptest.NewRequest(http.MethodDelete, "/bookings?id=res-1&username=alice", nil)
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{err: domain.ErrReservationNotFound}
		req := httptest.NewRequest(http.MethodDelete, "/bookings?id=res-404", nil)
		rec := httptest.NewRecorder()

		HandleCancelBooking(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleRescheduleBooking(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	moved := domain.Reservation{
		ID:       "res-123",
		Username: "alice",
		ItemName: "Projector",
		StartAt:  start,
		EndAt:    start.Add(time.Hour),
	}

	newRouter := func(svc BookingRescheduler) http.Handler {
		r := chi.NewRouter()
		r.Put("/bookings/{id}", HandleRescheduleBooking(svc))
		return r
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{reservation: moved}
		body := `{"item_name":"Projector","start_local":"2025-06-03T09:00:00","duration_hours":1}`
		req := httptest.NewRequest(http.MethodPut, "/bookings/res-123", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.rescheduleInput.ReservationID != "res-123" {
			t.Fatalf("expected path id to reach service, got %q", svc.rescheduleInput.ReservationID)
		}
		if !strings.Contains(rec.Body.String(), `"item_name":"Projector"`) {
			t.Fatalf("expected moved booking in response, got %q", rec.Body.String())
		}
	})

	t.Run("conflict", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{err: &domain.ConflictError{Blocking: domain.ReservationSummary{ID: "res-7"}}}
		body := `{"item_name":"Projector","start_local":"2025-06-03T09:00:00"}`
		req := httptest.NewRequest(http.MethodPut, "/bookings/res-123", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{}
		req := httptest.NewRequest(http.MethodPut, "/bookings/res-123", bytes.NewBufferString(`{"item_name":`))
		rec := httptest.NewRecorder()

		newRouter(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleListBookings(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{reservations: []domain.Reservation{
			{ID: "res-1", Username: "alice", ItemName: "Meeting Room", StartAt: start.Add(-24 * time.Hour), EndAt: start.Add(-23 * time.Hour)},
			{ID: "res-2", Username: "bob", ItemName: "Projector", StartAt: start, EndAt: start.Add(time.Hour)},
		}}
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		HandleListBookings(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `"res-1"`) || !strings.Contains(body, `"res-2"`) {
			t.Fatalf("expected both bookings in response, got %q", body)
		}
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{}
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		HandleListBookings(svc).ServeHTTP(rec, req)

		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("expected empty array, got %q", rec.Body.String())
		}
	})

	t.Run("storage unavailable", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{err: domain.ErrUnavailable}
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		HandleListBookings(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", rec.Code)
		}
	})
}

func TestHandleListUserBookings(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{summaries: []domain.ReservationSummary{
			{ID: "res-1", ItemName: "Meeting Room", StartAt: start, EndAt: start.Add(time.Hour)},
		}}
		r := chi.NewRouter()
		r.Get("/users/{username}/bookings", HandleListUserBookings(svc))
		req := httptest.NewRequest(http.MethodGet, "/users/alice/bookings", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.listedUsername != "alice" {
			t.Fatalf("expected username from path, got %q", svc.listedUsername)
		}
		if !strings.Contains(rec.Body.String(), `"res-1"`) {
			t.Fatalf("expected booking in response, got %q", rec.Body.String())
		}
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{}
		r := chi.NewRouter()
		r.Get("/users/{username}/bookings", HandleListUserBookings(svc))
		req := httptest.NewRequest(http.MethodGet, "/users/bob/bookings", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Fatalf("expected empty array, got %q", rec.Body.String())
		}
	})

	t.Run("user not found", func(t *testing.T) {
		t.Parallel()
		svc := &stubBookingService{err: domain.ErrUserNotFound}
		r := chi.NewRouter()
		r.Get("/users/{username}/bookings", HandleListUserBookings(svc))
		req := httptest.NewRequest(http.MethodGet, "/users/nobody/bookings", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

type stubBookingService struct {
	reservation     domain.Reservation
	reservations    []domain.Reservation
	cancelResult    app.CancelResult
	summaries       []domain.ReservationSummary
	err             error
	cancelInput     app.CancelBookingInput
	rescheduleInput app.RescheduleBookingInput
	listedUsername  string
}

func (s *stubBookingService) CreateBooking(_ context.Context, _ app.CreateBookingInput) (domain.Reservation, error) {
	return s.reservation, s.err
}

func (s *stubBookingService) CancelBooking(_ context.Context, in app.CancelBookingInput) (app.CancelResult, error) {
	s.cancelInput = in
	return s.cancelResult, s.err
}

func (s *stubBookingService) RescheduleBooking(_ context.Context, in app.RescheduleBookingInput) (domain.Reservation, error) {
	s.rescheduleInput = in
	return s.reservation, s.err
}

func (s *stubBookingService) ListUserBookings(_ context.Context, username string) ([]domain.ReservationSummary, error) {
	s.listedUsername = username
	return s.summaries, s.err
}

func (s *stubBookingService) ListBookings(_ context.Context) ([]domain.Reservation, error) {
	return s.reservations, s.err
}
