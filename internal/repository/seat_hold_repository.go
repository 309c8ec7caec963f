package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/reservation"
)

// ReservationStore is the MySQL implementation of reservation.Store.
// Seat holds live in the seat_holds table, whose UNIQUE KEY on
// (show_id, seat_id) is the atomic check-and-set the no-double-booking
// invariant rests on: of two transactions racing to insert the same
// seat, exactly one commits.  The booking ledger methods live in
// booking_repository.go.  All timestamps are compared in UTC.
type ReservationStore struct {
	db *sql.DB
}

// NewReservationStore returns a ReservationStore bound to the
// provided database.
func NewReservationStore(db *sql.DB) *ReservationStore { return &ReservationStore{db: db} }

// AcquireSeats implements reservation.Store.  Within one transaction
// it discards expired provisional holds for the show, checks the
// requested seats for active holds, and bulk-inserts the batch.  The
// unique key backstops the check: a concurrent insert that slips in
// between read and write surfaces as a duplicate-key error and the
// whole batch rolls back.
func (r *ReservationStore) AcquireSeats(ctx context.Context, batch *model.HoldBatch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lazy expiry: lapsed provisional holds on this show must not
	// block the request.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE show_id = ? AND state = ? AND expires_at <= UTC_TIMESTAMP()`,
		batch.ShowID, model.HoldProvisional,
	); err != nil {
		return err
	}

	conflicts, err := activeHoldsIn(ctx, tx, batch.ShowID, batch.SeatIDs, true)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &reservation.SeatsUnavailableError{Seats: conflicts}
	}

	query := `INSERT INTO seat_holds (batch_id, show_id, seat_id, holder_id, state, expires_at) VALUES `
	args := make([]interface{}, 0, len(batch.SeatIDs)*6)
	for i, seat := range batch.SeatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, batch.ID, batch.ShowID, seat, batch.HolderID,
			model.HoldProvisional, batch.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			// Lost the race after the availability check.  Report the
			// contested seats so the client can re-select.
			lost, qerr := activeHoldsIn(ctx, r.db, batch.ShowID, batch.SeatIDs, false)
			if qerr != nil || len(lost) == 0 {
				lost = batch.SeatIDs
			}
			return &reservation.SeatsUnavailableError{Seats: lost}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetBatch implements reservation.Store.
func (r *ReservationStore) GetBatch(ctx context.Context, batchID string) (*model.HoldBatch, error) {
	const q = `SELECT show_id, holder_id, state, expires_at, created_at, seat_id
	           FROM seat_holds WHERE batch_id = ? ORDER BY seat_id`
	rows, err := r.db.QueryContext(ctx, q, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var batch *model.HoldBatch
	for rows.Next() {
		var showID uint64
		var holderID, state, seatID string
		var expiresAt, createdAt time.Time
		if err := rows.Scan(&showID, &holderID, &state, &expiresAt, &createdAt, &seatID); err != nil {
			return nil, err
		}
		if batch == nil {
			batch = &model.HoldBatch{
				ID:        batchID,
				ShowID:    showID,
				HolderID:  holderID,
				State:     state,
				ExpiresAt: expiresAt.UTC(),
				CreatedAt: createdAt.UTC(),
			}
		}
		batch.SeatIDs = append(batch.SeatIDs, seatID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, reservation.ErrHoldNotFound
	}
	return batch, nil
}

// ConfirmBatch implements reservation.Store.  The batch rows are
// locked, re-checked for expiry, flipped to CONFIRMED and the booking
// inserted, all in one transaction.
func (r *ReservationStore) ConfirmBatch(ctx context.Context, batchID string, booking *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var state string
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT state, expires_at FROM seat_holds WHERE batch_id = ? LIMIT 1 FOR UPDATE`,
		batchID,
	).Scan(&state, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reservation.ErrHoldNotFound
		}
		return err
	}
	if state == model.HoldConfirmed {
		return reservation.ErrHoldConfirmed
	}
	if !expiresAt.UTC().After(time.Now().UTC()) {
		// Expired under lock: drop the lapsed rows so the seats read
		// as available, then report the expiry.
		if _, err := tx.ExecContext(ctx, `DELETE FROM seat_holds WHERE batch_id = ?`, batchID); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return reservation.ErrHoldExpired
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE seat_holds SET state = ?, booking_id = ? WHERE batch_id = ?`,
		model.HoldConfirmed, booking.ID, batchID,
	); err != nil {
		return err
	}
	if err := insertBookingTx(ctx, tx, booking); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReleaseBatch implements reservation.Store.  Unknown batches release
// zero seats without error so the operation is idempotent.
func (r *ReservationStore) ReleaseBatch(ctx context.Context, batchID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var state string
	err = tx.QueryRowContext(ctx,
		`SELECT state FROM seat_holds WHERE batch_id = ? LIMIT 1 FOR UPDATE`, batchID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if state == model.HoldConfirmed {
		return 0, reservation.ErrHoldConfirmed
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE batch_id = ? AND state = ?`, batchID, model.HoldProvisional)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return int(n), nil
}

// ReleaseExpired implements reservation.Store.  Called by the
// background sweeper across all shows.
func (r *ReservationStore) ReleaseExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE state = ? AND expires_at <= ?`,
		model.HoldProvisional, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// OccupiedSeats implements reservation.Store.  Expiry is applied in
// the query predicate, so a lapsed hold never reads as occupied even
// before the sweeper removes its row.
func (r *ReservationStore) OccupiedSeats(ctx context.Context, showID uint64) ([]string, error) {
	const q = `SELECT seat_id FROM seat_holds
	           WHERE show_id = ? AND (state = ? OR expires_at > UTC_TIMESTAMP())
	           ORDER BY seat_id`
	rows, err := r.db.QueryContext(ctx, q, showID, model.HoldConfirmed)
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

// queryer abstracts *sql.DB and *sql.Tx for shared query helpers.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// activeHoldsIn returns which of the given seats carry an active hold
// for the show.  With forUpdate set the rows are locked, which
// serializes the availability check against concurrent acquirers.
func activeHoldsIn(ctx context.Context, q queryer, showID uint64, seatIDs []string, forUpdate bool) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, 0, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+2)
	args = append(args, showID)
	for _, s := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, s)
	}
	args = append(args, model.HoldConfirmed)
	query := `SELECT seat_id FROM seat_holds
	          WHERE show_id = ? AND seat_id IN (` + strings.Join(placeholders, ",") + `)
	          AND (state = ? OR expires_at > UTC_TIMESTAMP())`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var held []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		held = append(held, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(held)
	return held, nil
}
