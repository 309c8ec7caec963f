package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcineplex/ticketing/internal/model"
)

// stubCatalog satisfies Catalog from fixed maps.
type stubCatalog struct {
	shows map[uint64]*model.Show
	rows  map[uint64][]model.HallRow
}

func (c *stubCatalog) ShowByID(ctx context.Context, showID uint64) (*model.Show, error) {
	s, ok := c.shows[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	cp := *s
	return &cp, nil
}

func (c *stubCatalog) HallRows(ctx context.Context, hallConfigID uint64) ([]model.HallRow, error) {
	return c.rows[hallConfigID], nil
}

// newTestEngine wires an engine over a fresh memory store with one
// active show: id 1, hall 1 (rows A and B, two seats each), 1200
// cents per seat.
func newTestEngine() (*Engine, *MemoryStore, *stubCatalog) {
	store := NewMemoryStore()
	catalog := &stubCatalog{
		shows: map[uint64]*model.Show{
			1: {ID: 1, MovieID: 7, HallConfigID: 1, PriceCents: 1200, Status: model.ShowActive},
		},
		rows: map[uint64][]model.HallRow{
			1: {{Label: "A", SeatCount: 2}, {Label: "B", SeatCount: 2}},
		},
	}
	return NewEngine(store, catalog), store, catalog
}

func TestSeatMap(t *testing.T) {
	eng, _, _ := newTestEngine()
	ids, err := eng.SeatMap(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, ids)
}

func TestPlaceHoldRejectsUnknownSeats(t *testing.T) {
	eng, _, _ := newTestEngine()
	_, err := eng.PlaceHold(context.Background(), 1, []string{"A1", "Z9"}, "u1", 0)
	var unknown *UnknownSeatsError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"Z9"}, unknown.Seats)
}

func TestPlaceHoldRejectsEmptyAndOversized(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := eng.PlaceHold(ctx, 1, nil, "u1", 0)
	assert.ErrorIs(t, err, ErrNoSeats)

	_, err = eng.PlaceHold(ctx, 1, []string{"A1", "A2", "B1", "B2", "C1", "C2", "C3"}, "u1", 0)
	assert.ErrorIs(t, err, ErrTooManySeats)
}

func TestPlaceHoldOnInactiveShow(t *testing.T) {
	eng, _, catalog := newTestEngine()
	catalog.shows[1].Status = model.ShowCancelled
	_, err := eng.PlaceHold(context.Background(), 1, []string{"A1"}, "u1", 0)
	assert.ErrorIs(t, err, ErrShowNotBookable)
}

func TestOverlappingHoldFails(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := eng.PlaceHold(ctx, 1, []string{"A1", "B2"}, "u1", 10*time.Minute)
	require.NoError(t, err)

	_, err = eng.PlaceHold(ctx, 1, []string{"A1"}, "u2", 10*time.Minute)
	var unavailable *SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"A1"}, unavailable.Seats)

	// The losing request must not have held B1 either: a batch with a
	// conflicting seat leaves no partial hold behind.
	_, err = eng.PlaceHold(ctx, 1, []string{"A1", "B1"}, "u3", 10*time.Minute)
	require.ErrorAs(t, err, &unavailable)
	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, occupied)
}

func TestConcurrentHoldsExactlyOneWins(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	losers := 0

	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := eng.PlaceHold(ctx, 1, []string{"A1"}, "racer", 10*time.Minute)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners++
				return
			}
			var unavailable *SeatsUnavailableError
			if assert.ErrorAs(t, err, &unavailable) {
				losers++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent caller may seize the seat")
	assert.Equal(t, callers-1, losers)
}

func TestReleaseHoldIdempotent(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	batch, err := eng.PlaceHold(ctx, 1, []string{"A1", "A2"}, "u1", 10*time.Minute)
	require.NoError(t, err)

	released, err := eng.ReleaseHold(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	// Second release observes the same end state with no error.
	released, err = eng.ReleaseHold(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, released)

	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, occupied)
}

func TestPlaceHoldDefaultTTL(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return base }

	batch, err := eng.PlaceHold(ctx, 1, []string{"A1"}, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, base.Add(DefaultHoldTTL), batch.ExpiresAt)
}

func TestPlaceHoldConfiguredDefaultTTL(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return base }

	eng.SetDefaultHoldTTL(2 * time.Minute)
	batch, err := eng.PlaceHold(ctx, 1, []string{"A1"}, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Minute), batch.ExpiresAt,
		"zero-TTL request must use the configured default, not the package constant")

	// Explicit TTLs stay unaffected by the configured default.
	batch, err = eng.PlaceHold(ctx, 1, []string{"A2"}, "u1", 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, base.Add(5*time.Minute), batch.ExpiresAt)

	// The configured default is clamped like any other TTL.
	eng.SetDefaultHoldTTL(time.Hour)
	batch, err = eng.PlaceHold(ctx, 1, []string{"B1"}, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, base.Add(MaxHoldTTL), batch.ExpiresAt)
}

func TestHoldExpiry(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	_, err := eng.PlaceHold(ctx, 1, []string{"B1"}, "u1", time.Second)
	require.NoError(t, err)

	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, occupied)

	time.Sleep(1100 * time.Millisecond)

	occupied, err = eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, occupied, "expired hold must not appear as occupied")
}

func TestConfirmExpiredHold(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	batch, err := eng.PlaceHold(ctx, 1, []string{"A2"}, "u1", 10*time.Minute)
	require.NoError(t, err)

	// Move the engine clock past the expiry instead of sleeping.
	eng.now = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err = eng.ConfirmHold(ctx, batch.ID, "u1@example.com")
	assert.ErrorIs(t, err, ErrHoldExpired)

	eng.now = time.Now
	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, occupied)
}

func TestConfirmRoundTrip(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	batch, err := eng.PlaceHold(ctx, 1, []string{"A1", "B2"}, "u1", 10*time.Minute)
	require.NoError(t, err)

	booking, err := eng.ConfirmHold(ctx, batch.ID, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, batch.SeatIDs, booking.SeatIDs)
	assert.Equal(t, uint32(2*1200), booking.AmountCents)
	assert.Equal(t, model.BookingPending, booking.State)
	assert.Equal(t, "u1", booking.UserID)

	// Confirming twice is rejected.
	_, err = eng.ConfirmHold(ctx, batch.ID, "u1@example.com")
	assert.ErrorIs(t, err, ErrHoldConfirmed)

	// Confirmed seats remain occupied until the booking is cancelled.
	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, occupied)

	// Releasing a confirmed batch is refused.
	_, err = eng.ReleaseHold(ctx, batch.ID)
	assert.ErrorIs(t, err, ErrHoldConfirmed)
}

func TestPaymentStateMachine(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	batch, err := eng.PlaceHold(ctx, 1, []string{"A1"}, "u1", 10*time.Minute)
	require.NoError(t, err)
	booking, err := eng.ConfirmHold(ctx, batch.ID, "u1@example.com")
	require.NoError(t, err)

	paid, err := eng.MarkBookingPaid(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPaid, paid.State)

	// PAID -> PAID is invalid.
	_, err = eng.MarkBookingPaid(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// PAID -> CANCELLED is the refund path and frees the seats.
	cancelled, err := eng.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.State)

	// CANCELLED is terminal.
	_, err = eng.MarkBookingPaid(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = eng.CancelBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, occupied)
}

// TestBookingScenario walks the full flow: map, hold, conflicting
// hold, confirm, cancel.
func TestBookingScenario(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	ids, err := eng.SeatMap(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2", "B1", "B2"}, ids)

	batch, err := eng.PlaceHold(ctx, 1, []string{"A1", "B2"}, "u1", 600*time.Second)
	require.NoError(t, err)

	_, err = eng.PlaceHold(ctx, 1, []string{"A1"}, "u2", 600*time.Second)
	var unavailable *SeatsUnavailableError
	require.ErrorAs(t, err, &unavailable)

	booking, err := eng.ConfirmHold(ctx, batch.ID, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, booking.SeatIDs)
	assert.Equal(t, uint32(2*1200), booking.AmountCents)

	_, err = eng.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)

	occupied, err := eng.OccupiedSeats(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, occupied)
}

func TestListBookings(t *testing.T) {
	eng, _, _ := newTestEngine()
	ctx := context.Background()

	b1, err := eng.PlaceHold(ctx, 1, []string{"A1"}, "u1", 10*time.Minute)
	require.NoError(t, err)
	_, err = eng.ConfirmHold(ctx, b1.ID, "u1@example.com")
	require.NoError(t, err)

	b2, err := eng.PlaceHold(ctx, 1, []string{"B1"}, "u2", 10*time.Minute)
	require.NoError(t, err)
	_, err = eng.ConfirmHold(ctx, b2.ID, "u2@example.com")
	require.NoError(t, err)

	mine, err := eng.ListBookingsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].UserID)

	all, err := eng.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSweeperReleasesExpiredHolds(t *testing.T) {
	store := NewMemoryStore()
	batch := &model.HoldBatch{
		ID:        "sweep-test",
		ShowID:    1,
		HolderID:  "u1",
		SeatIDs:   []string{"A1"},
		State:     model.HoldProvisional,
		ExpiresAt: time.Now().UTC().Add(20 * time.Millisecond),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AcquireSeats(context.Background(), batch))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewSweeper(store, 10*time.Millisecond).Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		occupied, err := store.OccupiedSeats(context.Background(), 1)
		return err == nil && len(occupied) == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
