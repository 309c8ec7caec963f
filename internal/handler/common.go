package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/reservation"
)

// getUserID extracts the opaque user identifier the JWT middleware
// stored in the context.  The identity provider issues stable string
// subjects, so anything else is treated as unauthenticated.
func getUserID(c echo.Context) (string, error) {
	v := c.Get("user_id")
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s, nil
	}
	return "", errors.New("missing user_id in context")
}

// getEmail returns the requester's email from the verified token, or
// an empty string when the claim is absent.  A missing email never
// blocks the reservation flow; it only degrades notifications.
func getEmail(c echo.Context) string {
	if s, ok := c.Get("email").(string); ok {
		return s
	}
	return ""
}

// engineError translates reservation engine failures into HTTP
// responses.  Availability conflicts carry the offending seat list so
// clients can re-query and re-select.
func engineError(c echo.Context, err error) error {
	var unavailable *reservation.SeatsUnavailableError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "seats unavailable",
			"unavailable": unavailable.Seats,
		})
	}
	var unknown *reservation.UnknownSeatsError
	if errors.As(err, &unknown) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "unknown seats for this hall",
			"unknown": unknown.Seats,
		})
	}
	switch {
	case errors.Is(err, reservation.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.Is(err, reservation.ErrShowNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "show is not open for booking"})
	case errors.Is(err, reservation.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
	case errors.Is(err, reservation.ErrTooManySeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 6 seats per hold"})
	case errors.Is(err, reservation.ErrHoldNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
	case errors.Is(err, reservation.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	case errors.Is(err, reservation.ErrHoldConfirmed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "hold already confirmed"})
	case errors.Is(err, reservation.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, reservation.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid booking state for this operation"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
