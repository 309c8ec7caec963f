package model

import "time"

// Seat hold states.  A seat has at most one active hold (provisional
// or confirmed) at any time; this is the central invariant the
// reservation engine enforces.
const (
	HoldProvisional = "PROVISIONAL"
	HoldConfirmed   = "CONFIRMED"
)

// HoldBatch groups the seat holds created by a single hold request.
// All seats in a batch share the holder, expiry and state, and they
// transition together: the batch is confirmed, released or expired as
// a unit.  Partial batches are never observable.
//
// Fields:
//  ID        – opaque batch identifier (UUID) returned to the client.
//  ShowID    – show the seats belong to.
//  HolderID  – opaque user identifier from the identity provider.
//  SeatIDs   – held seat identifiers ("A1", "B2", ...).
//  State     – PROVISIONAL until confirmed.
//  ExpiresAt – when a provisional batch lapses (UTC).
//  CreatedAt – creation timestamp.
type HoldBatch struct {
	ID        string    // seat_holds.batch_id
	ShowID    uint64    // seat_holds.show_id
	HolderID  string    // seat_holds.holder_id
	SeatIDs   []string  // seat_holds.seat_id, one row per seat
	State     string    // seat_holds.state
	ExpiresAt time.Time // seat_holds.expires_at
	CreatedAt time.Time // seat_holds.created_at
}

// Expired reports whether a provisional batch has lapsed at the given
// instant.  Confirmed batches never expire; their seats are released
// only by cancelling the owning booking.
func (b *HoldBatch) Expired(now time.Time) bool {
	return b.State == HoldProvisional && !b.ExpiresAt.After(now)
}
