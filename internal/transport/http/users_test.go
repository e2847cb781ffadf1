package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pBarszczewska/booking-api/internal/domain"
)

func TestHandleRegisterUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "success",
			body:           `{"username":"alice","email":"alice@example.com","password":"s3cret"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"username":"alice"`,
		},
		{
			name:           "invalid json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "username taken",
			body:           `{"username":"alice","email":"alice@example.com","password":"s3cret"}`,
			serviceErr:     domain.ErrUsernameTaken,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "email taken",
			body:           `{"username":"alice2","email":"alice@example.com","password":"s3cret"}`,
			serviceErr:     domain.ErrEmailTaken,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "invalid email",
			body:           `{"username":"alice","email":"nope","password":"s3cret"}`,
			serviceErr:     domain.ErrInvalidEmail,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCatalogService{
				user: domain.User{
					ID:        "user-1",
					Username:  "alice",
					Email:     "alice@example.com",
					CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				},
				err: tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandleRegisterUser(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			if tt.expectedSubstr != "" && !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "password") {
				t.Fatalf("response must not leak credentials: %q", rec.Body.String())
			}
		})
	}
}

func TestHandleListUsers(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{users: []domain.User{
		{ID: "user-1", Username: "alice", Email: "alice@example.com"},
		{ID: "user-2", Username: "bob", Email: "bob@example.com"},
	}}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()

	HandleListUsers(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"alice"`) || !strings.Contains(body, `"bob"`) {
		t.Fatalf("expected both users in response, got %q", body)
	}
}
