package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pBarszczewska/booking-api/internal/app"
	"github.com/pBarszczewska/booking-api/internal/clock"
	"github.com/pBarszczewska/booking-api/internal/domain"
	"github.com/pBarszczewska/booking-api/internal/storage/postgres"
	"github.com/pBarszczewska/booking-api/internal/testutil"
)

func TestCreateBooking_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	reservationRepo := postgres.NewReservationRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	svc := app.NewBookingService(reservationRepo, directoryRepo, directoryRepo, clock.NewFixed(now),
		app.WithLocation(time.UTC),
	)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	testutil.InsertUser(t, ctx, pool, "alice", "alice@example.com")
	itemID := testutil.InsertItem(t, ctx, pool, "Meeting Room")

	body := []byte(`{"username":"alice","item_name":"Meeting Room","email":"alice@example.com","start_local":"2025-06-02T14:00:00","duration_hours":2}`)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	HandleCreateBooking(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp reservationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "alice" || resp.ItemName != "Meeting Room" {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	wantStart := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	if !resp.StartAt.Equal(wantStart) || !resp.EndAt.Equal(wantStart.Add(2*time.Hour)) {
		t.Fatalf("unexpected window: %v .. %v", resp.StartAt, resp.EndAt)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE item_id = $1`, itemID,
	).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reservation, got %d", count)
	}

	// The same window on the same item is rejected with the blocking booking.
	req2 := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewBuffer(body))
	rec2 := httptest.NewRecorder()
	HandleCreateBooking(svc).ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec2.Code, rec2.Body.String())
	}
	var conflict errorResponse
	if err := json.NewDecoder(rec2.Body).Decode(&conflict); err != nil {
		t.Fatalf("decode conflict response: %v", err)
	}
	if conflict.Blocking == nil || conflict.Blocking.ID != resp.ID {
		t.Fatalf("expected blocking booking %s, got %+v", resp.ID, conflict.Blocking)
	}
}

func TestCancelBooking_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	reservationRepo := postgres.NewReservationRepository(pool)
	directoryRepo := postgres.NewDirectoryRepository(pool)
	svc := app.NewBookingService(reservationRepo, directoryRepo, directoryRepo, clock.NewFixed(now),
		app.WithLocation(time.UTC),
	)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	userID := testutil.InsertUser(t, ctx, pool, "alice", "alice@example.com")
	itemID := testutil.InsertItem(t, ctx, pool, "Meeting Room")
	resID := testutil.InsertReservation(t, ctx, pool, domain.Reservation{
		UserID:   userID,
		ItemID:   itemID,
		Username: "alice",
		ItemName: "Meeting Room",
		Email:    "alice@example.com",
		StartAt:  now.Add(time.Hour),
		EndAt:    now.Add(2 * time.Hour),
	})

	req := httptest.NewRequest(http.MethodDelete, "/bookings?username=alice", nil)
	rec := httptest.NewRecorder()
	HandleCancelBooking(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE id = $1`, resID).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected reservation removed, got %d rows", count)
	}
}
