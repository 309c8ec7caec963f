package model

import "time"

// Show lifecycle states.  Shows are never deleted while bookings
// reference them; administrators soft-cancel instead.
const (
	ShowActive    = "ACTIVE"
	ShowCancelled = "CANCELLED"
	ShowCompleted = "COMPLETED"
)

// Show represents a scheduled screening of a movie in a particular
// hall.  Pricing is flat per seat; the booking amount is always
// seat count × PriceCents.
//
// Fields:
//  ID           – primary key identifier.
//  MovieID      – movie being screened.
//  HallConfigID – hall configuration the show is scheduled against.
//  StartsAt     – when the show begins (UTC).
//  PriceCents   – price per seat in cents.
//  Status       – current state (ACTIVE, CANCELLED, COMPLETED).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Show struct {
	ID           uint64    // shows.id
	MovieID      uint64    // shows.movie_id
	HallConfigID uint64    // shows.hall_config_id
	StartsAt     time.Time // shows.starts_at
	PriceCents   uint32    // shows.price_cents
	Status       string    // shows.status
	CreatedAt    time.Time // shows.created_at
	UpdatedAt    time.Time // shows.updated_at
}
