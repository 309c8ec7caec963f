package model

import "time"

// Review is a user's rating and optional text for a movie.  A user
// has at most one review per movie; submitting again replaces the
// previous rating and text.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – reviewed movie.
//  UserID    – opaque user identifier from the identity provider.
//  Rating    – star rating, 1 to 5 inclusive.
//  Body      – optional review text (nullable).
//  CreatedAt – when the review was first submitted.
//  UpdatedAt – last edit timestamp.
type Review struct {
	ID        uint64    // movie_reviews.id
	MovieID   uint64    // movie_reviews.movie_id
	UserID    string    // movie_reviews.user_id
	Rating    uint8     // movie_reviews.rating
	Body      *string   // movie_reviews.body (nullable)
	CreatedAt time.Time // movie_reviews.created_at
	UpdatedAt time.Time // movie_reviews.updated_at
}
