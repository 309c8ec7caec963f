package model

import "time"

// HallConfig describes the seating layout of a screening hall.  A
// configuration is an ordered sequence of rows, each with its own seat
// count, so irregular layouts (e.g. a shorter back row) are supported.
// Configurations are created by administrators and become immutable as
// soon as a show is scheduled against them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique hall name (e.g. "Hall 1 - Premium").
//  Rows      – ordered row layout; populated by the repository.
//  IsActive  – whether the hall can be used for new shows.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type HallConfig struct {
	ID        uint64    // hall_configs.id
	Name      string    // hall_configs.name
	Rows      []HallRow // hall_config_rows, ordered by position
	IsActive  bool      // hall_configs.is_active
	CreatedAt time.Time // hall_configs.created_at
	UpdatedAt time.Time // hall_configs.updated_at
}

// HallRow is a single row within a hall configuration.  Seats within a
// row are numbered 1..SeatCount, and the seat identifier exposed to
// clients is the row label concatenated with the seat number ("A1").
//
// Fields:
//  Label     – row label, unique within the hall ("A", "B", ...).
//  SeatCount – number of seats in the row; must be at least one.
type HallRow struct {
	Label     string // hall_config_rows.row_label
	SeatCount int    // hall_config_rows.seat_count
}

// TotalSeats returns the number of seats across all rows.
func (h *HallConfig) TotalSeats() int {
	total := 0
	for _, r := range h.Rows {
		total += r.SeatCount
	}
	return total
}
