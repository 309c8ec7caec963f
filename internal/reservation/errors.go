// Package reservation implements the seat hold and booking engine.
// It owns the single source of truth for seat availability: the seat
// hold table.  Every mutation is all-or-nothing across the requested
// seat batch, and concurrent attempts to seize the same seat resolve
// first-committer-wins.
package reservation

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the engine and its stores.  Handlers
// translate these into HTTP responses.  Seat-level detail for
// availability conflicts travels in SeatsUnavailableError.
var (
	// ErrHoldNotFound is returned when a batch identifier does not
	// reference any known hold batch.
	ErrHoldNotFound = errors.New("hold batch not found")

	// ErrHoldExpired is returned when a provisional batch lapsed
	// before it was confirmed.  The client must restart the hold flow.
	ErrHoldExpired = errors.New("hold batch expired")

	// ErrHoldConfirmed is returned when releasing or re-confirming a
	// batch that was already converted into a booking.
	ErrHoldConfirmed = errors.New("hold batch already confirmed")

	// ErrBookingNotFound is returned when a booking identifier does
	// not reference any ledger entry.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a payment-state change
	// violates the ledger state machine.
	ErrInvalidTransition = errors.New("invalid payment state transition")

	// ErrShowNotFound is returned when the requested show does not
	// exist in the catalog.
	ErrShowNotFound = errors.New("show not found")

	// ErrShowNotBookable is returned when holds are requested against
	// a cancelled or completed show.
	ErrShowNotBookable = errors.New("show is not open for booking")

	// ErrNoSeats is returned when a hold request names no seats.
	ErrNoSeats = errors.New("no seats requested")

	// ErrTooManySeats is returned when a hold request exceeds the
	// per-batch seat cap.
	ErrTooManySeats = errors.New("too many seats requested")
)

// SeatsUnavailableError carries the seat identifiers that blocked a
// hold request: seats with an active hold by someone else.  The whole
// batch is rejected; no partial hold is ever created.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.Seats, ", "))
}

// UnknownSeatsError carries seat identifiers that do not exist in the
// show's hall configuration.  It signals a client error rather than a
// transient availability conflict.
type UnknownSeatsError struct {
	Seats []string
}

func (e *UnknownSeatsError) Error() string {
	return fmt.Sprintf("unknown seats: %s", strings.Join(e.Seats, ", "))
}
