package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/handler"
	"github.com/starcineplex/ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  Guests
// can inspect the catalog, the schedule, hall layouts and live seat
// availability before deciding to sign in and book.  The optional
// middleware (response cache) is applied to catalog reads only: seat
// availability must never be served stale, so it is registered
// outside the cached group.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	g.GET("/movies", p.ListMovies)
	g.GET("/movies/:id", p.GetMovie)
	g.GET("/movies/:id/shows", p.ListShowsByMovie)
	g.GET("/movies/:id/reviews", p.ListMovieReviews)
	g.GET("/shows/:id", p.GetShow)
	g.GET("/halls/:id/seatmap", p.GetHallSeatMap)

	// Full seat map with the occupied subset, so a client renders the
	// picker in one request.  Uncached.
	e.GET("/v1/shows/:id/seats", p.GetShowSeats)
}

// RegisterCustomer registers customer-scoped endpoints under /v1.
// All routes require a valid JWT and the CUSTOMER role.  Customers
// place and release seat holds, confirm them into bookings, pay,
// cancel, and manage their favorites and reviews.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, b *handler.BookingHandler, f *handler.FavoriteHandler, rv *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin),
	)

	// Hold lifecycle.
	g.POST("/shows/:id/hold", r.PlaceHold)
	g.POST("/holds/:batch_id/confirm", r.ConfirmHold)
	g.DELETE("/holds/:batch_id", r.ReleaseHold)

	// Booking ledger.
	g.GET("/my-bookings", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/pay", b.Pay)
	g.DELETE("/bookings/:id", b.Cancel)

	// Favorites and reviews.
	g.GET("/my-favorites", f.ListMine)
	g.GET("/movies/:id/favorite", f.Status)
	g.POST("/movies/:id/favorite", f.Add)
	g.DELETE("/movies/:id/favorite", f.Remove)
	g.PUT("/movies/:id/review", rv.Upsert)
	g.DELETE("/movies/:id/review", rv.Delete)
}

// RegisterAdmin registers administrative endpoints under /v1/admin.
// All routes require a valid JWT carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, cat *handler.AdminCatalogHandler, bk *handler.AdminBookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	g.POST("/movies", cat.CreateMovie)
	g.PUT("/movies/:id", cat.UpdateMovie)
	g.DELETE("/movies/:id", cat.ArchiveMovie)

	g.POST("/halls", cat.CreateHall)
	g.GET("/halls", cat.ListHalls)
	g.PATCH("/halls/:id/active", cat.SetHallActive)

	g.POST("/shows", cat.CreateShow)
	g.GET("/shows", cat.ListShows)
	g.DELETE("/shows/:id", cat.CancelShow)

	g.GET("/bookings", bk.ListBookings)
	g.GET("/dashboard", bk.Dashboard)
}
