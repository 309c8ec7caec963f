package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/queue"
	"github.com/starcineplex/ticketing/internal/repository"
	"github.com/starcineplex/ticketing/internal/reservation"
	queue_publisher "github.com/starcineplex/ticketing/internal/service"
)

// ReservationHandler exposes the hold lifecycle to authenticated
// customers: place a provisional hold, confirm it into a booking, or
// release it early.
type ReservationHandler struct {
	Engine    *reservation.Engine
	MovieRepo *repository.MovieRepo
	ShowRepo  *repository.ShowRepo
	HallRepo  *repository.HallRepo

	// PublishEvents toggles broker notifications; disabled in tests.
	PublishEvents bool
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(engine *reservation.Engine, movies *repository.MovieRepo, shows *repository.ShowRepo, halls *repository.HallRepo, publishEvents bool) *ReservationHandler {
	if engine == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{
		Engine:        engine,
		MovieRepo:     movies,
		ShowRepo:      shows,
		HallRepo:      halls,
		PublishEvents: publishEvents,
	}
}

// holdRequest is the body for POST /v1/shows/:id/hold.
type holdRequest struct {
	Seats      []string `json:"seats"`
	TTLSeconds int      `json:"ttl_seconds"`
}

// PlaceHold handles POST /v1/shows/:id/hold. The batch is
// all-or-nothing: if any requested seat is taken, nothing is held and
// the response lists the conflicting seats.
func (h *ReservationHandler) PlaceHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ttl := time.Duration(req.TTLSeconds) * time.Second

	batch, err := h.Engine.PlaceHold(c.Request().Context(), showID, req.Seats, userID, ttl)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"batch_id":   batch.ID,
		"show_id":    batch.ShowID,
		"seats":      batch.SeatIDs,
		"state":      batch.State,
		"expires_at": batch.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// confirmRequest is the optional body for hold confirmation. Email
// defaults to the identity token claim when omitted.
type confirmRequest struct {
	Email string `json:"email"`
}

// ConfirmHold handles POST /v1/holds/:batch_id/confirm. Only the
// holder may confirm. On success a PENDING booking is created and a
// booking.confirmed event is published.
func (h *ReservationHandler) ConfirmHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	batchID := c.Param("batch_id")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch id"})
	}
	ctx := c.Request().Context()

	batch, err := h.Engine.GetHold(ctx, batchID)
	if err != nil {
		return engineError(c, err)
	}
	if batch.HolderID != userID {
		// Do not reveal whether the batch exists to other users.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
	}

	var req confirmRequest
	_ = c.Bind(&req)
	email := req.Email
	if email == "" {
		email = getEmail(c)
	}

	booking, err := h.Engine.ConfirmHold(ctx, batchID, email)
	if err != nil {
		return engineError(c, err)
	}

	if h.PublishEvents {
		go h.publishConfirmed(booking)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   booking.ID,
		"show_id":      booking.ShowID,
		"seats":        booking.SeatIDs,
		"amount_cents": booking.AmountCents,
		"state":        booking.State,
	})
}

// ReleaseHold handles DELETE /v1/holds/:batch_id. Releasing an
// unknown or already released batch succeeds so the endpoint is safe
// to retry.
func (h *ReservationHandler) ReleaseHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	batchID := c.Param("batch_id")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid batch id"})
	}
	ctx := c.Request().Context()

	batch, err := h.Engine.GetHold(ctx, batchID)
	switch {
	case err == nil:
		if batch.HolderID != userID {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
		}
		if batch.State == model.HoldConfirmed {
			return engineError(c, reservation.ErrHoldConfirmed)
		}
	case err == reservation.ErrHoldNotFound:
		// Already gone; fall through to the idempotent release.
	default:
		return engineError(c, err)
	}

	released, err := h.Engine.ReleaseHold(ctx, batchID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released_seats": released})
}

// publishConfirmed assembles and publishes the booking.confirmed
// event. Catalog lookups are best effort: a missing title never
// blocks the notification.
func (h *ReservationHandler) publishConfirmed(b *model.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		Email:            b.Email,
		ShowID:           b.ShowID,
		SeatIDs:          b.SeatIDs,
		TotalAmountCents: b.AmountCents,
		ConfirmedAt:      b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if h.ShowRepo != nil {
		if show, err := h.ShowRepo.GetByID(ctx, b.ShowID); err == nil {
			ev.StartsAt = show.StartsAt.UTC().Format(time.RFC3339)
			if h.MovieRepo != nil {
				if movie, err := h.MovieRepo.GetByID(ctx, show.MovieID); err == nil {
					ev.MovieTitle = movie.Title
				}
			}
			if h.HallRepo != nil {
				if hall, err := h.HallRepo.GetByID(ctx, show.HallConfigID); err == nil {
					ev.HallName = hall.Name
				}
			}
		}
	}
	_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
}
