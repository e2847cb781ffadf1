package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pBarszczewska/booking-api/internal/domain"
	"github.com/pBarszczewska/booking-api/internal/testutil"
)

func TestDirectoryRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewDirectoryRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("FindUserByUsername ignores case and padding", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		userID := testutil.InsertUser(t, ctx, pool, "alice", "alice@example.com")

		user, err := repo.FindUserByUsername(ctx, "  ALICE  ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user == nil || user.ID != userID || user.Username != "alice" {
			t.Fatalf("unexpected user: %+v", user)
		}

		_, err = repo.FindUserByUsername(ctx, "nobody")
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("FindItemByName ignores case and padding", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		itemID := testutil.InsertItem(t, ctx, pool, "Meeting Room")

		item, err := repo.FindItemByName(ctx, " meeting room ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item == nil || item.ID != itemID || item.Name != "Meeting Room" {
			t.Fatalf("unexpected item: %+v", item)
		}

		_, err = repo.FindItemByName(ctx, "Submarine")
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})
}
