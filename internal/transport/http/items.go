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

// AvailabilityChecker is the minimal interface needed to compute availability.
type AvailabilityChecker interface {
	ComputeAvailableItems(ctx context.Context, at time.Time) (app.ItemAvailability, error)
}

// ItemAdmin is the minimal interface needed to manage the item catalog.
type ItemAdmin interface {
	CreateItem(ctx context.Context, name string) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

type itemResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func itemsOf(items []domain.Item) []itemResponse {
	resp := make([]itemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, itemResponse{ID: it.ID, Name: it.Name})
	}
	return resp
}

type availabilityResponse struct {
	Available   []itemResponse `json:"available"`
	Unavailable []itemResponse `json:"unavailable"`
	ComputedAt  time.Time      `json:"computed_at"`
}

// HandleItemAvailability partitions the catalog into available and
// unavailable items at an instant, defaulting to now. The optional "at"
// query parameter is RFC 3339.
func HandleItemAvailability(svc AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var at time.Time
		if raw := r.URL.Query().Get("at"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequest, "at must be an RFC 3339 timestamp")
				return
			}
			at = parsed
		}

		availability, err := svc.ComputeAvailableItems(r.Context(), at)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(availabilityResponse{
			Available:   itemsOf(availability.Available),
			Unavailable: itemsOf(availability.Unavailable),
			ComputedAt:  availability.ComputedAt,
		})
	}
}

type createItemRequest struct {
	Name string `json:"name"`
}

// HandleCreateItem returns an HTTP handler for adding a catalog item.
func HandleCreateItem(svc ItemAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		item, err := svc.CreateItem(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(itemResponse{ID: item.ID, Name: item.Name})
	}
}

// HandleListItems returns an HTTP handler that lists the item catalog.
func HandleListItems(svc ItemAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListItems(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(itemsOf(items))
	}
}

// HandleDeleteItem returns an HTTP handler that removes a catalog item.
func HandleDeleteItem(svc ItemAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
