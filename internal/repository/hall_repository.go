package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/seatmap"
)

// HallRepo provides data access to hall_configs and their ordered
// rows in hall_config_rows.  A configuration is validated with the
// seatmap package before it is stored, so every persisted layout is
// guaranteed to generate a well-formed seat map.  Configurations
// referenced by shows are immutable.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo returns a HallRepo bound to the provided database.
func NewHallRepo(db *sql.DB) *HallRepo { return &HallRepo{db: db} }

// Create stores a hall configuration and its rows in one
// transaction.  The layout is validated first; malformed layouts are
// rejected with *seatmap.InvalidConfigurationError and nothing is
// written.  A duplicate name yields ErrDuplicate.
func (r *HallRepo) Create(ctx context.Context, h *model.HallConfig) error {
	if err := seatmap.Validate(h.Rows); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `INSERT INTO hall_configs (name, is_active) VALUES (?, ?)`, h.Name, h.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	query := `INSERT INTO hall_config_rows (hall_config_id, position, row_label, seat_count) VALUES `
	args := make([]interface{}, 0, len(h.Rows)*4)
	for i, row := range h.Rows {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, h.ID, i+1, row.Label, row.SeatCount)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM hall_configs WHERE id = ?`, h.ID,
	).Scan(&h.CreatedAt, &h.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a hall configuration with its ordered rows, or
// returns ErrHallNotFound.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.HallConfig, error) {
	const q = `SELECT id, name, is_active, created_at, updated_at FROM hall_configs WHERE id = ?`
	var h model.HallConfig
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.IsActive, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	rows, err := r.Rows(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Rows = rows
	return &h, nil
}

// Rows returns the ordered row layout of a configuration.  An
// unknown ID yields ErrHallNotFound rather than an empty layout,
// since every stored configuration has at least one row.
func (r *HallRepo) Rows(ctx context.Context, hallConfigID uint64) ([]model.HallRow, error) {
	const q = `SELECT row_label, seat_count FROM hall_config_rows
	           WHERE hall_config_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, hallConfigID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.HallRow
	for rows.Next() {
		var hr model.HallRow
		if err := rows.Scan(&hr.Label, &hr.SeatCount); err != nil {
			return nil, err
		}
		out = append(out, hr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrHallNotFound
	}
	return out, nil
}

// ListAll returns every hall configuration with rows, ordered by
// name.  Used by the administrative console.
func (r *HallRepo) ListAll(ctx context.Context) ([]model.HallConfig, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_active, created_at, updated_at FROM hall_configs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HallConfig, 0)
	for rows.Next() {
		var h model.HallConfig
		if err := rows.Scan(&h.ID, &h.Name, &h.IsActive, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		layout, err := r.Rows(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Rows = layout
	}
	return out, nil
}

// SetActive toggles whether new shows may be scheduled against the
// configuration.  The layout itself is never mutated.
func (r *HallRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE hall_configs SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHallNotFound
	}
	return nil
}
