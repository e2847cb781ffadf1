package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pBarszczewska/booking-api/internal/domain"
)

// DirectoryRepository serves the booking engine's read-only lookups: users
// by username and items by name, both case-insensitive and trimmed.
type DirectoryRepository struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepository(pool *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool}
}

func (r *DirectoryRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE LOWER(username) = LOWER(TRIM($1))`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, mapErr("find user by username", err)
	}
	return &u, nil
}

func (r *DirectoryRepository) FindItemByName(ctx context.Context, name string) (*domain.Item, error) {
	const query = `SELECT id, name FROM items WHERE LOWER(name) = LOWER(TRIM($1))`

	var item domain.Item
	err := r.pool.QueryRow(ctx, query, name).Scan(&item.ID, &item.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, mapErr("find item by name", err)
	}
	return &item, nil
}
