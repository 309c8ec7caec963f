package repository

import (
	"context"
	"database/sql"

	"github.com/starcineplex/ticketing/internal/model"
)

// ReviewRepo provides data access to the movie_reviews table.  Each
// user has at most one review per movie; Upsert replaces the rating
// and body on resubmission.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a ReviewRepo bound to the provided database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Upsert creates or replaces the user's review of a movie.
func (r *ReviewRepo) Upsert(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO movie_reviews (movie_id, user_id, rating, body) VALUES (?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE rating = VALUES(rating), body = VALUES(body)`
	_, err := r.db.ExecContext(ctx, q, rev.MovieID, rev.UserID, rev.Rating, rev.Body)
	return err
}

// Delete removes the user's review of a movie.  Deleting an absent
// review is a no-op returning false.
func (r *ReviewRepo) Delete(ctx context.Context, userID string, movieID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM movie_reviews WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListForMovie returns the latest reviews for a movie along with the
// aggregate average rating over all of its reviews.  The average is
// computed in the database, not cached.
func (r *ReviewRepo) ListForMovie(ctx context.Context, movieID uint64, limit int) ([]model.Review, float64, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT id, movie_id, user_id, rating, body, created_at, updated_at
	           FROM movie_reviews WHERE movie_id = ?
	           ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, movieID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		var body sql.NullString
		if err := rows.Scan(&rev.ID, &rev.MovieID, &rev.UserID, &rev.Rating, &body, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if body.Valid {
			v := body.String
			rev.Body = &v
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx,
		`SELECT AVG(rating) FROM movie_reviews WHERE movie_id = ?`, movieID).Scan(&avg); err != nil {
		return nil, 0, err
	}
	average := 0.0
	if avg.Valid {
		average = avg.Float64
	}
	return out, average, nil
}
