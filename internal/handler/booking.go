package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/payment"
	"github.com/starcineplex/ticketing/internal/queue"
	"github.com/starcineplex/ticketing/internal/reservation"
	queue_publisher "github.com/starcineplex/ticketing/internal/service"
)

// BookingHandler exposes the booking ledger to authenticated
// customers: listing their own bookings, paying a pending booking and
// cancelling.
type BookingHandler struct {
	Engine  *reservation.Engine
	Gateway payment.Gateway

	// PublishEvents toggles broker notifications; disabled in tests.
	PublishEvents bool
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(engine *reservation.Engine, gateway payment.Gateway, publishEvents bool) *BookingHandler {
	if engine == nil || gateway == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Gateway: gateway, PublishEvents: publishEvents}
}

// bookingResponse shapes a ledger entry for JSON output.
func bookingResponse(b *model.Booking) echo.Map {
	return echo.Map{
		"booking_id":   b.ID,
		"show_id":      b.ShowID,
		"seats":        b.SeatIDs,
		"amount_cents": b.AmountCents,
		"state":        b.State,
		"created_at":   b.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ListMine handles GET /v1/my-bookings, newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Engine.ListBookingsForUser(c.Request().Context(), userID)
	if err != nil {
		return engineError(c, err)
	}
	items := make([]echo.Map, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookingResponse(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id. Only the owner may read a
// booking through this endpoint.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, err := h.ownBooking(c, userID)
	if err != nil {
		return engineError(c, err)
	}
	if booking == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingResponse(booking)})
}

// Pay handles POST /v1/bookings/:id/pay. The charge is idempotent on
// the booking ID, so a retried request after a network failure never
// double-charges. A declined charge leaves the booking PENDING.
func (h *BookingHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, err := h.ownBooking(c, userID)
	if err != nil {
		return engineError(c, err)
	}
	if booking == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	ctx := c.Request().Context()

	switch booking.State {
	case model.BookingPaid:
		return c.JSON(http.StatusOK, echo.Map{"item": bookingResponse(booking), "message": "already paid"})
	case model.BookingCancelled:
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is cancelled"})
	}

	result, err := h.Gateway.Charge(ctx, booking.ID, booking.AmountCents)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentFailed) {
			resp := echo.Map{"error": "payment declined"}
			if result != nil && result.Reason != "" {
				resp["reason"] = result.Reason
			}
			return c.JSON(http.StatusPaymentRequired, resp)
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway unavailable"})
	}

	paid, err := h.Engine.MarkBookingPaid(ctx, booking.ID)
	if err != nil {
		// The charge succeeded but the ledger write failed; surface the
		// transaction so support can reconcile.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":          "payment recorded but booking update failed",
			"transaction_id": result.TransactionID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":           bookingResponse(paid),
		"transaction_id": result.TransactionID,
	})
}

// Cancel handles DELETE /v1/bookings/:id. Cancelling releases the
// booking's seats back to availability in the same atomic step; a
// PAID booking transitions through a refund path downstream.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, err := h.ownBooking(c, userID)
	if err != nil {
		return engineError(c, err)
	}
	if booking == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	previous := booking.State

	cancelled, err := h.Engine.CancelBooking(c.Request().Context(), booking.ID)
	if err != nil {
		return engineError(c, err)
	}

	if h.PublishEvents {
		go publishCancelled(cancelled, previous)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingResponse(cancelled)})
}

// ownBooking loads the :id booking and verifies ownership. A booking
// owned by someone else is reported as nil so callers answer 404
// without leaking existence.
func (h *BookingHandler) ownBooking(c echo.Context, userID string) (*model.Booking, error) {
	bookingID := c.Param("id")
	if bookingID == "" {
		return nil, nil
	}
	booking, err := h.Engine.GetBooking(c.Request().Context(), bookingID)
	if err != nil {
		if errors.Is(err, reservation.ErrBookingNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, nil
	}
	return booking, nil
}

// publishCancelled publishes the booking.cancelled event.
func publishCancelled(b *model.Booking, previousState string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = queue_publisher.PublishBookingCancelled(ctx, queue.BookingCancelledEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		ShowID:           b.ShowID,
		SeatIDs:          b.SeatIDs,
		TotalAmountCents: b.AmountCents,
		PreviousState:    previousState,
		CancelledAt:      b.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
