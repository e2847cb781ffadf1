package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pBarszczewska/booking-api/internal/domain"
)

const reservationColumns = `id, user_id, item_id, username, item_name, email, start_at, end_at, created_at`

// ReservationRepository owns the reservations table. Booking writes run
// inside WithTx with a row lock on the item (GetItemForUpdate) so the
// conflict-check-then-write sequence is serialized per item; the
// reservations_no_overlap exclusion constraint backstops that discipline.
type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetItemForUpdate locks the item's row for the rest of the transaction.
// Bookings for other items acquire other rows and never wait here.
func (r *ReservationRepository) GetItemForUpdate(ctx context.Context, itemID string) (domain.Item, error) {
	const query = `SELECT id, name FROM items WHERE id = $1 FOR UPDATE`
	var item domain.Item
	err := r.queryRow(ctx, query, itemID).Scan(&item.ID, &item.Name)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Item{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, mapErr("lock item", err)
	}
	return item, nil
}

// FindConflicting returns the first active reservation overlapping the
// half-open window [start, end) on the item, lowest id first. Back-to-back
// reservations do not match: both interval comparisons are strict.
func (r *ReservationRepository) FindConflicting(ctx context.Context, itemID string, start, end time.Time, excludeID string, now time.Time) (*domain.Reservation, error) {
	query := `
SELECT ` + reservationColumns + `
FROM reservations
WHERE item_id = $1 AND start_at < $3 AND $2 < end_at AND end_at > $4`
	args := []any{itemID, start, end, now}

	if excludeID != "" {
		query += ` AND id <> $5`
		args = append(args, excludeID)
	}
	query += ` ORDER BY id LIMIT 1`

	res, err := r.scanReservation(r.queryRow(ctx, query, args...))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("find conflicting reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, user_id, item_id, username, item_name, email, start_at, end_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.UserID,
		res.ItemID,
		res.Username,
		res.ItemName,
		res.Email,
		res.StartAt,
		res.EndAt,
		res.CreatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			// The no-overlap constraint fired before the blocking row could
			// be read; the item name is all the caller gets.
			return &domain.ConflictError{Blocking: domain.ReservationSummary{ItemName: res.ItemName}}
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return mapErr("create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := r.scanReservation(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("get reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) (bool, error) {
	tag, err := r.exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, mapErr("delete reservation", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ReservationRepository) UpdateReservation(ctx context.Context, id, itemID, itemName string, start, end time.Time) error {
	const stmt = `
UPDATE reservations
SET item_id = $2, item_name = $3, start_at = $4, end_at = $5
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, itemID, itemName, start, end)
	if err != nil {
		if isExclusionViolation(err) {
			return &domain.ConflictError{Blocking: domain.ReservationSummary{ItemName: itemName}}
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return mapErr("update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// ListByUsername returns the user's reservations, active and expired,
// matched against the snapshot username, ascending by start.
func (r *ReservationRepository) ListByUsername(ctx context.Context, username string) ([]domain.Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE LOWER(username) = LOWER(TRIM($1))
ORDER BY start_at ASC`

	rows, err := r.query(ctx, query, username)
	if err != nil {
		return nil, mapErr("list reservations by username", err)
	}
	return r.collectReservations(rows, "list reservations by username")
}

// ListAll returns every reservation, active and expired, ascending by
// start.
func (r *ReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
ORDER BY start_at ASC, id ASC`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, mapErr("list reservations", err)
	}
	return r.collectReservations(rows, "list reservations")
}

func (r *ReservationRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.query(ctx, `SELECT id, name FROM items ORDER BY LOWER(name)`)
	if err != nil {
		return nil, mapErr("list items", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, mapErr("list items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list items", err)
	}
	return items, nil
}

func (r *ReservationRepository) FindCovering(ctx context.Context, itemID string, at time.Time) (*domain.Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE item_id = $1 AND start_at <= $2 AND $2 < end_at
ORDER BY id LIMIT 1`

	res, err := r.scanReservation(r.queryRow(ctx, query, itemID, at))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapErr("find covering reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListCovering(ctx context.Context, at time.Time) ([]domain.Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE start_at <= $1 AND $1 < end_at`

	rows, err := r.query(ctx, query, at)
	if err != nil {
		return nil, mapErr("list covering reservations", err)
	}
	return r.collectReservations(rows, "list covering reservations")
}

func (r *ReservationRepository) scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.ItemID,
		&res.Username,
		&res.ItemName,
		&res.Email,
		&res.StartAt,
		&res.EndAt,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) collectReservations(rows pgx.Rows, op string) ([]domain.Reservation, error) {
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
