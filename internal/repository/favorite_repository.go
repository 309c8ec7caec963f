package repository

import (
	"context"
	"database/sql"

	"github.com/starcineplex/ticketing/internal/model"
)

// FavoriteRepo provides data access to the favorites table, the
// many-to-many association between users and movies.  Uniqueness on
// (user_id, movie_id) is enforced by a database constraint.
type FavoriteRepo struct {
	db *sql.DB
}

// NewFavoriteRepo returns a FavoriteRepo bound to the provided
// database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add marks a movie as a favorite of the user.  Adding twice is a
// no-op: the duplicate insert is swallowed and false is returned,
// true when a new row was created.
func (r *FavoriteRepo) Add(ctx context.Context, userID string, movieID uint64) (bool, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, movie_id) VALUES (?, ?)`, userID, movieID)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove deletes the association.  Removing an absent favorite is a
// no-op returning false.
func (r *FavoriteRepo) Remove(ctx context.Context, userID string, movieID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsFavorite reports whether the user has favorited the movie.
func (r *FavoriteRepo) IsFavorite(ctx context.Context, userID string, movieID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListForUser returns the user's favorited movies, newest first.
func (r *FavoriteRepo) ListForUser(ctx context.Context, userID string) ([]model.Movie, error) {
	const q = `SELECT m.id, m.title, m.overview, m.poster_path, m.genres, m.runtime_min, m.status, m.created_at, m.updated_at
	           FROM favorites f
	           JOIN movies m ON m.id = f.movie_id
	           WHERE f.user_id = ?
	           ORDER BY f.added_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
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
