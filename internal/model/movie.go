package model

import "time"

// Movie catalog states.
const (
	MovieActive   = "ACTIVE"
	MovieArchived = "ARCHIVED"
)

// Movie represents an entry in the movie catalog.  The catalog is
// read-only for customers; administrators create and archive entries.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title.
//  Overview    – short synopsis (nullable).
//  PosterPath  – relative poster image path (nullable).
//  Genres      – comma separated genre names stored denormalized.
//  RuntimeMin  – runtime in minutes.
//  Status      – catalog state (ACTIVE, ARCHIVED).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
	ID         uint64    // movies.id
	Title      string    // movies.title
	Overview   *string   // movies.overview (nullable)
	PosterPath *string   // movies.poster_path (nullable)
	Genres     string    // movies.genres
	RuntimeMin uint32    // movies.runtime_min
	Status     string    // movies.status
	CreatedAt  time.Time // movies.created_at
	UpdatedAt  time.Time // movies.updated_at
}
