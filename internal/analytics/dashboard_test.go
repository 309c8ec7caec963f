package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starcineplex/ticketing/internal/model"
)

func TestComputeEmptyLedger(t *testing.T) {
	s := Compute(nil)
	assert.Equal(t, 0, s.TotalBookings)
	assert.Equal(t, uint64(0), s.RevenueCents)
	assert.Empty(t, s.ByShow)
}

func TestComputeCountsAndRevenue(t *testing.T) {
	bookings := []model.Booking{
		{ID: "b1", ShowID: 1, State: model.BookingPaid, SeatIDs: []string{"A1", "A2"}, AmountCents: 2400},
		{ID: "b2", ShowID: 1, State: model.BookingPaid, SeatIDs: []string{"B1"}, AmountCents: 1200},
		{ID: "b3", ShowID: 2, State: model.BookingPaid, SeatIDs: []string{"A1"}, AmountCents: 1500},
		{ID: "b4", ShowID: 2, State: model.BookingPending, SeatIDs: []string{"A2"}, AmountCents: 1500},
		{ID: "b5", ShowID: 2, State: model.BookingCancelled, SeatIDs: []string{"A3"}, AmountCents: 1500},
	}
	s := Compute(bookings)

	assert.Equal(t, 5, s.TotalBookings)
	assert.Equal(t, 1, s.PendingBookings)
	assert.Equal(t, 3, s.PaidBookings)
	assert.Equal(t, 1, s.CancelledBookings)
	assert.Equal(t, 3, s.SeatsSold)
	assert.Equal(t, uint64(2400+1200+1500), s.RevenueCents)

	// Per-show breakdown is ordered by revenue, highest first, and
	// excludes unpaid bookings.
	assert.Len(t, s.ByShow, 2)
	assert.Equal(t, uint64(1), s.ByShow[0].ShowID)
	assert.Equal(t, uint64(3600), s.ByShow[0].RevenueCents)
	assert.Equal(t, 3, s.ByShow[0].SeatsSold)
	assert.Equal(t, uint64(2), s.ByShow[1].ShowID)
	assert.Equal(t, 1, s.ByShow[1].Bookings)
}
