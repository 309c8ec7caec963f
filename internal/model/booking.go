package model

import "time"

// Booking payment states.  Transitions form a strict state machine:
// PENDING -> PAID, PENDING -> CANCELLED, PAID -> CANCELLED (refund).
// CANCELLED is terminal and PAID never returns to PENDING.
const (
	BookingPending   = "PENDING"
	BookingPaid      = "PAID"
	BookingCancelled = "CANCELLED"
)

// Booking is the durable ledger record of a committed reservation.
// It is created when a hold batch is confirmed and its seat set
// always equals the confirmed holds of that batch.
//
// Fields:
//  ID          – booking reference (UUID).
//  UserID      – opaque requester identifier from the identity provider.
//  Email       – requester email captured at confirmation time.
//  ShowID      – show the seats were booked for.
//  SeatIDs     – booked seat identifiers, non-empty.
//  AmountCents – total price, always len(SeatIDs) × show price.
//  State       – payment state (PENDING, PAID, CANCELLED).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last state change timestamp.
type Booking struct {
	ID          string    // bookings.id
	UserID      string    // bookings.user_id
	Email       string    // bookings.email
	ShowID      uint64    // bookings.show_id
	SeatIDs     []string  // booking_seats.seat_id, one row per seat
	AmountCents uint32    // bookings.amount_cents
	State       string    // bookings.state
	CreatedAt   time.Time // bookings.created_at
	UpdatedAt   time.Time // bookings.updated_at
}

// ValidTransition reports whether the payment state machine permits
// moving a booking from one state to another.
func ValidTransition(from, to string) bool {
	switch {
	case from == BookingPending && to == BookingPaid:
		return true
	case from == BookingPending && to == BookingCancelled:
		return true
	case from == BookingPaid && to == BookingCancelled:
		return true
	}
	return false
}
