package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/starcineplex/ticketing/internal/model"
)

// ShowRepo provides data access to the shows table.  Shows reference
// a movie and a hall configuration; they are created and mutated only
// by administrators and soft-cancelled rather than deleted while
// bookings reference them.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo returns a ShowRepo bound to the provided database.
func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

// Create inserts a show after verifying the movie and hall exist and
// the hall is active.  Timestamps are normalized to UTC.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	var active bool
	err := r.db.QueryRowContext(ctx, `SELECT is_active FROM hall_configs WHERE id = ?`, s.HallConfigID).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHallNotFound
		}
		return err
	}
	if !active {
		return ErrConflict
	}
	var exists uint64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM movies WHERE id = ?`, s.MovieID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	const q = `INSERT INTO shows (movie_id, hall_config_id, starts_at, price_cents, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.MovieID, s.HallConfigID, s.StartsAt.UTC().Format("2006-01-02 15:04:05"), s.PriceCents, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM shows WHERE id = ?`, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID loads a show or returns ErrShowNotFound.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT id, movie_id, hall_config_id, starts_at, price_cents, status, created_at, updated_at
	           FROM shows WHERE id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.HallConfigID, &s.StartsAt, &s.PriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	s.StartsAt = s.StartsAt.UTC()
	return &s, nil
}

// ListByMovie returns upcoming active shows for a movie ordered by
// start time.
func (r *ShowRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Show, error) {
	const q = `SELECT id, movie_id, hall_config_id, starts_at, price_cents, status, created_at, updated_at
	           FROM shows
	           WHERE movie_id = ? AND status = ? AND starts_at > UTC_TIMESTAMP()
	           ORDER BY starts_at`
	return r.list(ctx, q, movieID, model.ShowActive)
}

// ListAll returns every show ordered by start time descending.  Used
// by the administrative console.
func (r *ShowRepo) ListAll(ctx context.Context) ([]model.Show, error) {
	const q = `SELECT id, movie_id, hall_config_id, starts_at, price_cents, status, created_at, updated_at
	           FROM shows ORDER BY starts_at DESC`
	return r.list(ctx, q)
}

// Cancel soft-cancels a show.  The row is never deleted; bookings
// keep referencing it and are cancelled separately by the caller.
// Cancelling an already finished show yields ErrConflict.
func (r *ShowRepo) Cancel(ctx context.Context, id uint64) error {
	show, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if show.Status == model.ShowCompleted {
		return ErrConflict
	}
	_, err = r.db.ExecContext(ctx, `UPDATE shows SET status = ? WHERE id = ?`, model.ShowCancelled, id)
	return err
}

// MarkCompleted flips active shows whose start time has passed the
// given horizon to COMPLETED.  Returns the number of shows updated.
func (r *ShowRepo) MarkCompleted(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE shows SET status = ? WHERE status = ? AND starts_at < ?`,
		model.ShowCompleted, model.ShowActive, before.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ShowRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Show, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		if err := rows.Scan(&s.ID, &s.MovieID, &s.HallConfigID, &s.StartsAt, &s.PriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.StartsAt = s.StartsAt.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
