package reservation

import (
	"context"
	"time"

	"github.com/starcineplex/ticketing/internal/model"
)

// Store is the transactionally consistent backing store for seat
// holds and the booking ledger.  Implementations must make each
// method atomic: either every seat in a batch transitions or none
// does, and two concurrent AcquireSeats calls for an overlapping seat
// set must never both succeed.
//
// The MySQL implementation lives in the repository package; an
// in-memory implementation suitable for tests and single-process
// development is provided by NewMemoryStore.
type Store interface {
	// AcquireSeats creates provisional holds for every seat in the
	// batch, first discarding any expired provisional holds on the
	// contested seats.  It fails with *SeatsUnavailableError when any
	// seat already carries an active hold.
	AcquireSeats(ctx context.Context, batch *model.HoldBatch) error

	// GetBatch loads a hold batch with its seat set.  It returns
	// ErrHoldNotFound when the identifier is unknown.
	GetBatch(ctx context.Context, batchID string) (*model.HoldBatch, error)

	// ConfirmBatch atomically transitions every provisional hold in
	// the batch to confirmed and records the booking.  It fails with
	// ErrHoldExpired when the batch lapsed, ErrHoldConfirmed when it
	// was already confirmed, and ErrHoldNotFound when it is unknown.
	ConfirmBatch(ctx context.Context, batchID string, booking *model.Booking) error

	// ReleaseBatch removes a provisional batch and returns the number
	// of seats released.  Releasing an unknown or already released
	// batch is a no-op returning zero; releasing a confirmed batch
	// fails with ErrHoldConfirmed.
	ReleaseBatch(ctx context.Context, batchID string) (int, error)

	// ReleaseExpired removes every provisional hold whose expiry has
	// passed and returns the number of seats released.  Both the
	// background sweeper and explicit sweeps call it.
	ReleaseExpired(ctx context.Context, now time.Time) (int, error)

	// OccupiedSeats returns the seat identifiers with an active
	// (provisional and unexpired, or confirmed) hold for the show.
	// Reads are never served from a cache.
	OccupiedSeats(ctx context.Context, showID uint64) ([]string, error)

	// GetBooking loads a ledger entry or fails with ErrBookingNotFound.
	GetBooking(ctx context.Context, bookingID string) (*model.Booking, error)

	// MarkBookingPaid transitions a booking PENDING -> PAID and
	// returns the updated entry.  Any other starting state fails with
	// ErrInvalidTransition.
	MarkBookingPaid(ctx context.Context, bookingID string) (*model.Booking, error)

	// CancelBooking transitions a booking to CANCELLED (from PENDING
	// or PAID) and releases its confirmed seat holds in the same
	// atomic step.  Cancelling a cancelled booking fails with
	// ErrInvalidTransition.
	CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error)

	// ListBookingsForUser returns the user's ledger entries, newest
	// first.
	ListBookingsForUser(ctx context.Context, userID string) ([]model.Booking, error)

	// ListBookings returns every ledger entry, newest first.  It
	// backs the administrative surface and the analytics read model.
	ListBookings(ctx context.Context) ([]model.Booking, error)
}

// Catalog supplies the read-only show and hall records the engine
// validates requests against.  The engine never mutates catalog data.
type Catalog interface {
	// ShowByID loads a show or fails with ErrShowNotFound.
	ShowByID(ctx context.Context, showID uint64) (*model.Show, error)

	// HallRows returns the ordered row layout of a hall configuration.
	HallRows(ctx context.Context, hallConfigID uint64) ([]model.HallRow, error)
}
