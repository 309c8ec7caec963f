// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for booking lifecycle events.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// BookingConfirmedEvent is published when a provisional hold is
// converted into a ledger entry. It carries enough information for
// downstream consumers to log, notify, or feed analytics without
// querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        string   `json:"booking_id"`
	UserID           string   `json:"user_id"`
	Email            string   `json:"email,omitempty"`
	ShowID           uint64   `json:"show_id"`
	MovieTitle       string   `json:"movie_title"`
	HallName         string   `json:"hall_name"`
	StartsAt         string   `json:"starts_at"`
	SeatIDs          []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and
// its seats are returned to availability. PreviousState distinguishes
// a pre-payment cancellation from a refund.
type BookingCancelledEvent struct {
	BookingID        string   `json:"booking_id"`
	UserID           string   `json:"user_id"`
	ShowID           uint64   `json:"show_id"`
	SeatIDs          []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	PreviousState    string   `json:"previous_state"`
	CancelledAt      string   `json:"cancelled_at"`
}
