package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pBarszczewska/booking-api/internal/app"
	"github.com/pBarszczewska/booking-api/internal/domain"
)

// BookingCreator is the minimal interface needed to create a booking.
type BookingCreator interface {
	CreateBooking(ctx context.Context, in app.CreateBookingInput) (domain.Reservation, error)
}

// BookingCanceller is the minimal interface needed to cancel a booking.
type BookingCanceller interface {
	CancelBooking(ctx context.Context, in app.CancelBookingInput) (app.CancelResult, error)
}

// BookingRescheduler is the minimal interface needed to reschedule a booking.
type BookingRescheduler interface {
	RescheduleBooking(ctx context.Context, in app.RescheduleBookingInput) (domain.Reservation, error)
}

// BookingLister is the minimal interface needed to list a user's bookings.
type BookingLister interface {
	ListUserBookings(ctx context.Context, username string) ([]domain.ReservationSummary, error)
}

// BookingBrowser is the minimal interface needed to list every booking.
type BookingBrowser interface {
	ListBookings(ctx context.Context) ([]domain.Reservation, error)
}

type createBookingRequest struct {
	Username      string `json:"username"`
	ItemName      string `json:"item_name"`
	Email         string `json:"email"`
	StartLocal    string `json:"start_local"`
	DurationHours int    `json:"duration_hours,omitempty"`
	WholeDay      bool   `json:"whole_day,omitempty"`
}

type reservationResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ItemName  string    `json:"item_name"`
	Email     string    `json:"email"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	CreatedAt time.Time `json:"created_at"`
}

func reservationOf(r domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		Username:  r.Username,
		ItemName:  r.ItemName,
		Email:     r.Email,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		CreatedAt: r.CreatedAt,
	}
}

// HandleCreateBooking returns an HTTP handler for creating bookings.
func HandleCreateBooking(svc BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		reservation, err := svc.CreateBooking(r.Context(), app.CreateBookingInput{
			Username:      req.Username,
			ItemName:      req.ItemName,
			Email:         req.Email,
			StartLocal:    req.StartLocal,
			DurationHours: req.DurationHours,
			WholeDay:      req.WholeDay,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(reservationOf(reservation))
	}
}

type cancelBookingResponse struct {
	Cancelled *reservationResponse `json:"cancelled,omitempty"`
	Message   string               `json:"message,omitempty"`
	Bookings  []bookingSummary     `json:"bookings,omitempty"`
}

// HandleCancelBooking cancels by reservation id or by username, supplied
// as query parameters. An ambiguous username match returns the candidate
// list as 300 Multiple Choices and cancels nothing.
func HandleCancelBooking(svc BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.CancelBooking(r.Context(), app.CancelBookingInput{
			ReservationID: r.URL.Query().Get("id"),
			Username:      r.URL.Query().Get("username"),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if len(result.Ambiguous) > 0 {
			bookings := make([]bookingSummary, 0, len(result.Ambiguous))
			for _, s := range result.Ambiguous {
				bookings = append(bookings, summaryOf(s))
			}
			w.WriteHeader(http.StatusMultipleChoices)
			_ = json.NewEncoder(w).Encode(cancelBookingResponse{
				Message:  "several bookings match; retry with an explicit booking id",
				Bookings: bookings,
			})
			return
		}

		cancelled := reservationOf(*result.Cancelled)
		_ = json.NewEncoder(w).Encode(cancelBookingResponse{Cancelled: &cancelled})
	}
}

type rescheduleBookingRequest struct {
	ItemName      string `json:"item_name"`
	StartLocal    string `json:"start_local"`
	DurationHours int    `json:"duration_hours,omitempty"`
	WholeDay      bool   `json:"whole_day,omitempty"`
}

// HandleRescheduleBooking returns an HTTP handler for rescheduling.
func HandleRescheduleBooking(svc BookingRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rescheduleBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		reservation, err := svc.RescheduleBooking(r.Context(), app.RescheduleBookingInput{
			ReservationID: chi.URLParam(r, "id"),
			ItemName:      req.ItemName,
			StartLocal:    req.StartLocal,
			DurationHours: req.DurationHours,
			WholeDay:      req.WholeDay,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reservationOf(reservation))
	}
}

// HandleListBookings lists every booking in the system, expired included,
// ordered by start time.
func HandleListBookings(svc BookingBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reservations, err := svc.ListBookings(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]reservationResponse, 0, len(reservations))
		for _, res := range reservations {
			resp = append(resp, reservationOf(res))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type userBookingResponse struct {
	ID       string    `json:"id"`
	ItemName string    `json:"item_name"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
}

// HandleListUserBookings lists all of a user's bookings, expired included,
// ordered by start time.
func HandleListUserBookings(svc BookingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.ListUserBookings(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]userBookingResponse, 0, len(summaries))
		for _, s := range summaries {
			resp = append(resp, userBookingResponse{
				ID:       s.ID,
				ItemName: s.ItemName,
				StartAt:  s.StartAt,
				EndAt:    s.EndAt,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
