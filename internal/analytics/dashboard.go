// Package analytics builds the administrative dashboard read model.
// Figures are recomputed on demand from the booking ledger rather
// than accumulated in process-wide state, so the numbers are always
// consistent with the ledger at the moment of the request.
package analytics

import (
	"sort"

	"github.com/starcineplex/ticketing/internal/model"
)

// Summary aggregates the booking ledger for the dashboard.
type Summary struct {
	TotalBookings     int           `json:"total_bookings"`
	PendingBookings   int           `json:"pending_bookings"`
	PaidBookings      int           `json:"paid_bookings"`
	CancelledBookings int           `json:"cancelled_bookings"`
	SeatsSold         int           `json:"seats_sold"`
	RevenueCents      uint64        `json:"revenue_cents"`
	ByShow            []ShowSummary `json:"by_show"`
}

// ShowSummary aggregates paid bookings per show, ordered by revenue
// descending.
type ShowSummary struct {
	ShowID       uint64 `json:"show_id"`
	Bookings     int    `json:"bookings"`
	SeatsSold    int    `json:"seats_sold"`
	RevenueCents uint64 `json:"revenue_cents"`
}

// Compute derives a Summary from ledger entries.  Only PAID bookings
// count toward revenue and seats sold; cancelled bookings that were
// refunded never contribute.
func Compute(bookings []model.Booking) Summary {
	s := Summary{ByShow: []ShowSummary{}}
	perShow := make(map[uint64]*ShowSummary)
	for _, b := range bookings {
		s.TotalBookings++
		switch b.State {
		case model.BookingPending:
			s.PendingBookings++
		case model.BookingCancelled:
			s.CancelledBookings++
		case model.BookingPaid:
			s.PaidBookings++
			s.SeatsSold += len(b.SeatIDs)
			s.RevenueCents += uint64(b.AmountCents)
			agg, ok := perShow[b.ShowID]
			if !ok {
				agg = &ShowSummary{ShowID: b.ShowID}
				perShow[b.ShowID] = agg
			}
			agg.Bookings++
			agg.SeatsSold += len(b.SeatIDs)
			agg.RevenueCents += uint64(b.AmountCents)
		}
	}
	for _, agg := range perShow {
		s.ByShow = append(s.ByShow, *agg)
	}
	sort.Slice(s.ByShow, func(i, j int) bool {
		if s.ByShow[i].RevenueCents == s.ByShow[j].RevenueCents {
			return s.ByShow[i].ShowID < s.ByShow[j].ShowID
		}
		return s.ByShow[i].RevenueCents > s.ByShow[j].RevenueCents
	})
	return s
}
