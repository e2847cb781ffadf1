package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pBarszczewska/booking-api/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidRequest      = "invalid_request"
	codeInvalidInterval     = "invalid_interval"
	codeInvalidEmail        = "invalid_email"
	codeInvalidID           = "invalid_id"
	codeUserNotFound        = "user_not_found"
	codeItemNotFound        = "item_not_found"
	codeBookingNotFound     = "booking_not_found"
	codeBookingConflict     = "booking_conflict"
	codeItemNameRequired    = "item_name_required"
	codeItemAlreadyExists   = "item_already_exists"
	codeUsernameTaken       = "username_taken"
	codeEmailTaken          = "email_taken"
	codeForbidden           = "forbidden"
	codeStorageUnavailable  = "storage_unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error    string          `json:"error"`
	Code     string          `json:"code"`
	Blocking *bookingSummary `json:"blocking,omitempty"`
}

type bookingSummary struct {
	ID       string    `json:"id"`
	ItemName string    `json:"item_name"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
}

func summaryOf(s domain.ReservationSummary) bookingSummary {
	return bookingSummary{
		ID:       s.ID,
		ItemName: s.ItemName,
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorResponse(w, status, errorResponse{Error: msg, Code: code})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(resp)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps engine errors onto stable HTTP codes. Unknown
// errors become a bare 500.
func writeDomainError(w http.ResponseWriter, err error) {
	if ce, ok := domain.IsConflict(err); ok {
		blocking := summaryOf(ce.Blocking)
		writeErrorResponse(w, http.StatusConflict, errorResponse{
			Error:    ce.Error(),
			Code:     codeBookingConflict,
			Blocking: &blocking,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
	case errors.Is(err, domain.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, codeInvalidInterval, err.Error())
	case errors.Is(err, domain.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, codeInvalidEmail, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrItemNameRequired):
		writeError(w, http.StatusBadRequest, codeItemNameRequired, err.Error())
	case errors.Is(err, domain.ErrItemAlreadyExists):
		writeError(w, http.StatusConflict, codeItemAlreadyExists, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, codeUsernameTaken, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, codeEmailTaken, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
