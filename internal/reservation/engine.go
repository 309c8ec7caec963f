package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/seatmap"
)

// Limits applied to hold requests.  The seat cap matches the booking
// UI, which refuses selections above six seats.  TTLs outside the
// allowed window are clamped rather than rejected.
const (
	MaxSeatsPerBatch = 6
	DefaultHoldTTL   = 10 * time.Minute
	MaxHoldTTL       = 15 * time.Minute
	MinHoldTTL       = time.Second
)

// Engine validates booking requests against the catalog and drives
// the hold and ledger state machines through a Store.  All
// correctness-critical decisions (seat conflicts, expiry, payment
// transitions) are delegated to the store's atomic operations; the
// engine itself holds no availability state and therefore never
// serves stale occupancy.
type Engine struct {
	store      Store
	catalog    Catalog
	now        func() time.Time
	defaultTTL time.Duration
}

// NewEngine constructs an Engine.  Both dependencies must be non-nil.
func NewEngine(store Store, catalog Catalog) *Engine {
	if store == nil || catalog == nil {
		panic("nil dependency passed to NewEngine")
	}
	return &Engine{store: store, catalog: catalog, now: time.Now, defaultTTL: DefaultHoldTTL}
}

// SetDefaultHoldTTL overrides the hold lifetime applied when a
// request does not specify one.  The value is clamped into
// [MinHoldTTL, MaxHoldTTL]; a non-positive value restores
// DefaultHoldTTL.
func (e *Engine) SetDefaultHoldTTL(ttl time.Duration) {
	if ttl <= 0 {
		e.defaultTTL = DefaultHoldTTL
		return
	}
	if ttl < MinHoldTTL {
		ttl = MinHoldTTL
	}
	if ttl > MaxHoldTTL {
		ttl = MaxHoldTTL
	}
	e.defaultTTL = ttl
}

// SeatMap returns the ordered seat identifiers for a hall
// configuration.  Generation is deterministic; see the seatmap
// package for the identifier format.
func (e *Engine) SeatMap(ctx context.Context, hallConfigID uint64) ([]string, error) {
	rows, err := e.catalog.HallRows(ctx, hallConfigID)
	if err != nil {
		return nil, err
	}
	return seatmap.SeatIDs(rows)
}

// OccupiedSeats returns the seats currently unavailable for the show:
// the union of unexpired provisional holds and confirmed holds.  The
// read goes straight to the store.
func (e *Engine) OccupiedSeats(ctx context.Context, showID uint64) ([]string, error) {
	if _, err := e.catalog.ShowByID(ctx, showID); err != nil {
		return nil, err
	}
	return e.store.OccupiedSeats(ctx, showID)
}

// PlaceHold creates a provisional hold batch for the holder on the
// requested seats.  Every seat must exist in the show's hall
// configuration and carry no active hold; the batch is created
// all-or-nothing.  A non-positive ttl selects the default, and the
// ttl is clamped into [MinHoldTTL, MaxHoldTTL].
func (e *Engine) PlaceHold(ctx context.Context, showID uint64, seatIDs []string, holderID string, ttl time.Duration) (*model.HoldBatch, error) {
	show, err := e.catalog.ShowByID(ctx, showID)
	if err != nil {
		return nil, err
	}
	if show.Status != model.ShowActive {
		return nil, ErrShowNotBookable
	}

	seats := normalizeSeatIDs(seatIDs)
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}
	if len(seats) > MaxSeatsPerBatch {
		return nil, ErrTooManySeats
	}

	rows, err := e.catalog.HallRows(ctx, show.HallConfigID)
	if err != nil {
		return nil, err
	}
	valid, err := seatmap.SeatSet(rows)
	if err != nil {
		return nil, err
	}
	var unknown []string
	for _, s := range seats {
		if _, ok := valid[s]; !ok {
			unknown = append(unknown, s)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownSeatsError{Seats: unknown}
	}

	now := e.now().UTC()
	batch := &model.HoldBatch{
		ID:        uuid.NewString(),
		ShowID:    showID,
		HolderID:  holderID,
		SeatIDs:   seats,
		State:     model.HoldProvisional,
		ExpiresAt: now.Add(e.clampTTL(ttl)),
		CreatedAt: now,
	}
	if err := e.store.AcquireSeats(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ConfirmHold converts a provisional batch into a PENDING booking.
// The requester's email is captured on the ledger entry for later
// notification.  Expiry is checked lazily here and re-checked
// atomically by the store, so a batch that lapses between the read
// and the write still fails with ErrHoldExpired.
func (e *Engine) ConfirmHold(ctx context.Context, batchID, email string) (*model.Booking, error) {
	batch, err := e.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.State == model.HoldConfirmed {
		return nil, ErrHoldConfirmed
	}
	now := e.now().UTC()
	if batch.Expired(now) {
		// Lazy expiry: drop the lapsed batch so its seats read as
		// available immediately.
		if _, relErr := e.store.ReleaseBatch(ctx, batchID); relErr != nil {
			return nil, relErr
		}
		return nil, ErrHoldExpired
	}

	show, err := e.catalog.ShowByID(ctx, batch.ShowID)
	if err != nil {
		return nil, err
	}
	booking := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      batch.HolderID,
		Email:       email,
		ShowID:      batch.ShowID,
		SeatIDs:     append([]string(nil), batch.SeatIDs...),
		AmountCents: uint32(len(batch.SeatIDs)) * show.PriceCents,
		State:       model.BookingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.ConfirmBatch(ctx, batchID, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// GetHold loads a hold batch.  Callers use this to verify ownership
// before confirming or releasing on a requester's behalf.
func (e *Engine) GetHold(ctx context.Context, batchID string) (*model.HoldBatch, error) {
	return e.store.GetBatch(ctx, batchID)
}

// ReleaseHold cancels a provisional batch before confirmation.  It is
// idempotent: releasing an unknown or already released batch succeeds
// with zero seats released.
func (e *Engine) ReleaseHold(ctx context.Context, batchID string) (int, error) {
	return e.store.ReleaseBatch(ctx, batchID)
}

// MarkBookingPaid records a successful payment.  Only PENDING
// bookings may transition to PAID.
func (e *Engine) MarkBookingPaid(ctx context.Context, bookingID string) (*model.Booking, error) {
	return e.store.MarkBookingPaid(ctx, bookingID)
}

// CancelBooking cancels a PENDING or PAID booking and releases its
// seats back to availability in the same atomic step.
func (e *Engine) CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	return e.store.CancelBooking(ctx, bookingID)
}

// GetBooking loads a ledger entry.
func (e *Engine) GetBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	return e.store.GetBooking(ctx, bookingID)
}

// ListBookingsForUser returns the requester's ledger entries, newest
// first.
func (e *Engine) ListBookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return e.store.ListBookingsForUser(ctx, userID)
}

// ListBookings returns every ledger entry for administrative use.
func (e *Engine) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return e.store.ListBookings(ctx)
}

// clampTTL applies the configured default and bounds to a requested
// hold TTL.
func (e *Engine) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return e.defaultTTL
	}
	if ttl < MinHoldTTL {
		return MinHoldTTL
	}
	if ttl > MaxHoldTTL {
		return MaxHoldTTL
	}
	return ttl
}

// normalizeSeatIDs trims, uppercases and deduplicates the requested
// seat identifiers while preserving request order.
func normalizeSeatIDs(seatIDs []string) []string {
	out := make([]string, 0, len(seatIDs))
	seen := make(map[string]struct{}, len(seatIDs))
	for _, s := range seatIDs {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
