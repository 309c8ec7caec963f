package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/analytics"
	"github.com/starcineplex/ticketing/internal/reservation"
)

// AdminBookingHandler gives administrators visibility into the full
// booking ledger and the revenue dashboard.
type AdminBookingHandler struct {
	Engine *reservation.Engine
}

// NewAdminBookingHandler constructs an AdminBookingHandler.
func NewAdminBookingHandler(engine *reservation.Engine) *AdminBookingHandler {
	if engine == nil {
		panic("nil engine passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Engine: engine}
}

// ListBookings handles GET /v1/admin/bookings: every ledger entry,
// newest first.
func (h *AdminBookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.Engine.ListBookings(c.Request().Context())
	if err != nil {
		return engineError(c, err)
	}
	items := make([]echo.Map, 0, len(bookings))
	for i := range bookings {
		item := bookingResponse(&bookings[i])
		item["user_id"] = bookings[i].UserID
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Dashboard handles GET /v1/admin/dashboard. The summary is
// recomputed from the ledger on every request, so it always reflects
// the current state rather than a drifting counter.
func (h *AdminBookingHandler) Dashboard(c echo.Context) error {
	bookings, err := h.Engine.ListBookings(c.Request().Context())
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, analytics.Compute(bookings))
}
