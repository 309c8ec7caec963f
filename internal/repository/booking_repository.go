package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/reservation"
)

// Booking ledger methods of ReservationStore.  The ledger lives in
// the bookings and booking_seats tables; payment-state transitions
// are enforced under row locks so concurrent pay/cancel requests for
// the same booking serialize cleanly.

// insertBookingTx writes a booking and its seats inside an existing
// transaction.  Used by ConfirmBatch so the ledger entry and the
// confirmed holds commit together.
func insertBookingTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, user_id, email, show_id, amount_cents, state) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, b.ID, b.UserID, b.Email, b.ShowID, b.AmountCents, b.State); err != nil {
		return err
	}
	query := `INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(b.SeatIDs)*3)
	for i, seat := range b.SeatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, b.ID, b.ShowID, seat)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetBooking implements reservation.Store.
func (r *ReservationStore) GetBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	const q = `SELECT id, user_id, email, show_id, amount_cents, state, created_at, updated_at
	           FROM bookings WHERE id = ?`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.UserID, &b.Email, &b.ShowID, &b.AmountCents, &b.State, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrBookingNotFound
		}
		return nil, err
	}
	seats, err := r.bookingSeats(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	b.SeatIDs = seats
	return &b, nil
}

// MarkBookingPaid implements reservation.Store.  The conditional
// UPDATE is the check-and-set: zero affected rows means the booking
// is missing or not PENDING.
func (r *ReservationStore) MarkBookingPaid(ctx context.Context, bookingID string) (*model.Booking, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET state = ? WHERE id = ? AND state = ?`,
		model.BookingPaid, bookingID, model.BookingPending)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.GetBooking(ctx, bookingID); err != nil {
			return nil, err
		}
		return nil, reservation.ErrInvalidTransition
	}
	return r.GetBooking(ctx, bookingID)
}

// CancelBooking implements reservation.Store.  The state transition
// and the release of the booking's confirmed seat holds happen in one
// transaction, so cancelled seats become available atomically.
func (r *ReservationStore) CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var state string
	err = tx.QueryRowContext(ctx,
		`SELECT state FROM bookings WHERE id = ? FOR UPDATE`, bookingID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrBookingNotFound
		}
		return nil, err
	}
	if !model.ValidTransition(state, model.BookingCancelled) {
		return nil, reservation.ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET state = ? WHERE id = ?`, model.BookingCancelled, bookingID); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE booking_id = ?`, bookingID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetBooking(ctx, bookingID)
}

// ListBookingsForUser implements reservation.Store.
func (r *ReservationStore) ListBookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	const q = `SELECT id, user_id, email, show_id, amount_cents, state, created_at, updated_at
	           FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return r.listBookings(ctx, q, userID)
}

// ListBookings implements reservation.Store.
func (r *ReservationStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT id, user_id, email, show_id, amount_cents, state, created_at, updated_at
	           FROM bookings ORDER BY created_at DESC`
	return r.listBookings(ctx, q)
}

func (r *ReservationStore) listBookings(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	index := make(map[string]int)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.Email, &b.ShowID, &b.AmountCents, &b.State, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.SeatIDs = []string{}
		index[b.ID] = len(out)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	// Fetch seats for all bookings in one query.
	ids := make([]interface{}, 0, len(out))
	placeholders := make([]string, 0, len(out))
	for _, b := range out {
		ids = append(ids, b.ID)
		placeholders = append(placeholders, "?")
	}
	seatQ := `SELECT booking_id, seat_id FROM booking_seats
	          WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY booking_id, seat_id`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid, seat string
		if err := srows.Scan(&bid, &seat); err != nil {
			return nil, err
		}
		if i, ok := index[bid]; ok {
			out[i].SeatIDs = append(out[i].SeatIDs, seat)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// bookingSeats returns the ordered seat identifiers of one booking.
func (r *ReservationStore) bookingSeats(ctx context.Context, bookingID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		out = append(out, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
