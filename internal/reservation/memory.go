package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/starcineplex/ticketing/internal/model"
)

// MemoryStore is an in-memory Store for tests and single-process
// development.  A single mutex guards every operation, which makes
// each method trivially atomic: a whole batch is acquired, confirmed
// or released under one lock, so concurrent callers racing for the
// same seat observe strictly first-committer-wins behaviour.
type MemoryStore struct {
	mu sync.Mutex
	// seats indexes the active hold batch per (show, seat).
	seats map[uint64]map[string]string // showID -> seatID -> batchID
	// batches holds every live hold batch by ID.
	batches map[string]*model.HoldBatch
	// bookings is the ledger, by booking ID.
	bookings map[string]*model.Booking
	// bookingBatch maps a booking to the confirmed batch backing it.
	bookingBatch map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seats:        make(map[uint64]map[string]string),
		batches:      make(map[string]*model.HoldBatch),
		bookings:     make(map[string]*model.Booking),
		bookingBatch: make(map[string]string),
	}
}

// AcquireSeats implements Store.
func (s *MemoryStore) AcquireSeats(ctx context.Context, batch *model.HoldBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.dropExpiredLocked(now)

	taken := s.seats[batch.ShowID]
	var conflicts []string
	for _, seat := range batch.SeatIDs {
		if _, held := taken[seat]; held {
			conflicts = append(conflicts, seat)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return &SeatsUnavailableError{Seats: conflicts}
	}

	if taken == nil {
		taken = make(map[string]string)
		s.seats[batch.ShowID] = taken
	}
	stored := cloneBatch(batch)
	for _, seat := range stored.SeatIDs {
		taken[seat] = stored.ID
	}
	s.batches[stored.ID] = stored
	return nil
}

// GetBatch implements Store.
func (s *MemoryStore) GetBatch(ctx context.Context, batchID string) (*model.HoldBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	return cloneBatch(b), nil
}

// ConfirmBatch implements Store.
func (s *MemoryStore) ConfirmBatch(ctx context.Context, batchID string, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return ErrHoldNotFound
	}
	if b.State == model.HoldConfirmed {
		return ErrHoldConfirmed
	}
	now := time.Now().UTC()
	if b.Expired(now) {
		s.removeBatchLocked(b)
		return ErrHoldExpired
	}
	b.State = model.HoldConfirmed
	s.bookings[booking.ID] = cloneBooking(booking)
	s.bookingBatch[booking.ID] = batchID
	return nil
}

// ReleaseBatch implements Store.
func (s *MemoryStore) ReleaseBatch(ctx context.Context, batchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return 0, nil
	}
	if b.State == model.HoldConfirmed {
		return 0, ErrHoldConfirmed
	}
	s.removeBatchLocked(b)
	return len(b.SeatIDs), nil
}

// ReleaseExpired implements Store.
func (s *MemoryStore) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropExpiredLocked(now.UTC()), nil
}

// OccupiedSeats implements Store.
func (s *MemoryStore) OccupiedSeats(ctx context.Context, showID uint64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.dropExpiredLocked(now)

	out := make([]string, 0, len(s.seats[showID]))
	for seat := range s.seats[showID] {
		out = append(out, seat)
	}
	sort.Strings(out)
	return out, nil
}

// GetBooking implements Store.
func (s *MemoryStore) GetBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// MarkBookingPaid implements Store.
func (s *MemoryStore) MarkBookingPaid(ctx context.Context, bookingID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !model.ValidTransition(b.State, model.BookingPaid) {
		return nil, ErrInvalidTransition
	}
	b.State = model.BookingPaid
	b.UpdatedAt = time.Now().UTC()
	return cloneBooking(b), nil
}

// CancelBooking implements Store.
func (s *MemoryStore) CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !model.ValidTransition(b.State, model.BookingCancelled) {
		return nil, ErrInvalidTransition
	}
	b.State = model.BookingCancelled
	b.UpdatedAt = time.Now().UTC()
	if batchID, ok := s.bookingBatch[bookingID]; ok {
		if batch, live := s.batches[batchID]; live {
			s.removeBatchLocked(batch)
		}
		delete(s.bookingBatch, bookingID)
	}
	return cloneBooking(b), nil
}

// ListBookingsForUser implements Store.
func (s *MemoryStore) ListBookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *cloneBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

// ListBookings implements Store.
func (s *MemoryStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *cloneBooking(b))
	}
	sortBookings(out)
	return out, nil
}

// removeBatchLocked deletes a batch and frees its seats.  Caller must
// hold the mutex.
func (s *MemoryStore) removeBatchLocked(b *model.HoldBatch) {
	if taken, ok := s.seats[b.ShowID]; ok {
		for _, seat := range b.SeatIDs {
			if taken[seat] == b.ID {
				delete(taken, seat)
			}
		}
		if len(taken) == 0 {
			delete(s.seats, b.ShowID)
		}
	}
	delete(s.batches, b.ID)
}

// dropExpiredLocked releases every lapsed provisional batch and
// returns the number of seats freed.  Caller must hold the mutex.
func (s *MemoryStore) dropExpiredLocked(now time.Time) int {
	released := 0
	for _, b := range s.batches {
		if b.Expired(now) {
			released += len(b.SeatIDs)
			s.removeBatchLocked(b)
		}
	}
	return released
}

func cloneBatch(b *model.HoldBatch) *model.HoldBatch {
	out := *b
	out.SeatIDs = append([]string(nil), b.SeatIDs...)
	return &out
}

func cloneBooking(b *model.Booking) *model.Booking {
	out := *b
	out.SeatIDs = append([]string(nil), b.SeatIDs...)
	return &out
}

func sortBookings(bookings []model.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
