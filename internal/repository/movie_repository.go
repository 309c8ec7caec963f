package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/starcineplex/ticketing/internal/model"
)

// MovieRepo provides data access to the movies table.  The catalog
// is read-mostly: customers browse it, administrators create and
// archive entries.  All timestamps are stored in UTC.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the provided database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// Create inserts a movie and populates the generated ID and
// timestamps on the passed model.  A duplicate title yields
// ErrDuplicate.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, overview, poster_path, genres, runtime_min, status) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Overview, m.PosterPath, m.Genres, m.RuntimeMin, m.Status)
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
	m.ID = uint64(id)
	return r.scanOne(ctx, m.ID, m)
}

// GetByID loads a movie or returns ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	if err := r.scanOne(ctx, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListActive returns active catalog entries ordered by title.  A
// non-positive limit returns everything.
func (r *MovieRepo) ListActive(ctx context.Context, limit int) ([]model.Movie, error) {
	q := `SELECT id, title, overview, poster_path, genres, runtime_min, status, created_at, updated_at
	      FROM movies WHERE status = ? ORDER BY title`
	args := []interface{}{model.MovieActive}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites a movie's editable fields.  Unknown IDs yield
// ErrMovieNotFound; a title collision yields ErrDuplicate.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies SET title = ?, overview = ?, poster_path = ?, genres = ?, runtime_min = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Overview, m.PosterPath, m.Genres, m.RuntimeMin, m.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	// RowsAffected is zero for a no-op update of an existing row, so
	// existence is re-checked by the reload.
	return r.scanOne(ctx, m.ID, m)
}

// SetStatus updates a movie's catalog state.  Unknown IDs yield
// ErrMovieNotFound.
func (r *MovieRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE movies SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// scanOne loads a single movie row into m.
func (r *MovieRepo) scanOne(ctx context.Context, id uint64, m *model.Movie) error {
	const q = `SELECT id, title, overview, poster_path, genres, runtime_min, status, created_at, updated_at
	           FROM movies WHERE id = ?`
	row := r.db.QueryRowContext(ctx, q, id)
	if err := scanMovie(row, m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows so scan helpers can be
// shared between single and multi row queries.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(row rowScanner, m *model.Movie) error {
	var overview, poster sql.NullString
	if err := row.Scan(&m.ID, &m.Title, &overview, &poster, &m.Genres, &m.RuntimeMin, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return err
	}
	if overview.Valid {
		v := overview.String
		m.Overview = &v
	}
	if poster.Valid {
		v := poster.String
		m.PosterPath = &v
	}
	return nil
}

// isDuplicateKey reports whether err is a MySQL duplicate-key
// violation (error 1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	// Fallback for drivers or wrappers that flatten the error.
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
