// Package handler exposes HTTP handlers for public, customer and
// administrative endpoints.  This file defines the unauthenticated
// browse API: movies, shows, hall seat maps and seat availability.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/repository"
	"github.com/starcineplex/ticketing/internal/reservation"
	"github.com/starcineplex/ticketing/internal/seatmap"
)

// PublicHandler aggregates the read-only dependencies for
// unauthenticated browsing.  Seat availability goes through the
// reservation engine so occupancy is never served stale.
type PublicHandler struct {
	MovieRepo  *repository.MovieRepo
	ShowRepo   *repository.ShowRepo
	HallRepo   *repository.HallRepo
	ReviewRepo *repository.ReviewRepo
	Engine     *reservation.Engine
}

// NewPublicHandler constructs a PublicHandler.  All dependencies must
// be non-nil.
func NewPublicHandler(movies *repository.MovieRepo, shows *repository.ShowRepo, halls *repository.HallRepo, reviews *repository.ReviewRepo, engine *reservation.Engine) *PublicHandler {
	if movies == nil || shows == nil || halls == nil || reviews == nil || engine == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{MovieRepo: movies, ShowRepo: shows, HallRepo: halls, ReviewRepo: reviews, Engine: engine}
}

// PublicMovie is a movie as exposed to unauthenticated clients.
type PublicMovie struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Overview   *string `json:"overview,omitempty"`
	PosterPath *string `json:"poster_path,omitempty"`
	Genres     string  `json:"genres"`
	RuntimeMin uint32  `json:"runtime_min"`
}

// PublicShow is a show as exposed to unauthenticated clients.
type PublicShow struct {
	ID         uint64    `json:"id"`
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
	Status     string    `json:"status"`
}

// ListMovies handles GET /v1/movies.  The optional ?limit query
// bounds the result count.
func (h *PublicHandler) ListMovies(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	movies, err := h.MovieRepo.ListActive(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, publicMovie(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	m, err := h.MovieRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": publicMovie(*m)})
}

// ListShowsByMovie handles GET /v1/movies/:id/shows.  Only upcoming
// active shows are returned.
func (h *PublicHandler) ListShowsByMovie(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	if _, err := h.MovieRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	shows, err := h.ShowRepo.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicShow, 0, len(shows))
	for _, s := range shows {
		out = append(out, publicShow(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetShow handles GET /v1/shows/:id.
func (h *PublicHandler) GetShow(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	s, err := h.ShowRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": publicShow(*s)})
}

// GetHallSeatMap handles GET /v1/halls/:id/seatmap.  It returns the
// deterministic ordered seat list for a hall configuration.
func (h *PublicHandler) GetHallSeatMap(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}
	ctx := c.Request().Context()
	rows, err := h.HallRepo.Rows(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	ids, err := seatmap.SeatIDs(rows)
	if err != nil {
		// Stored configurations are validated on create, so this only
		// fires on corrupted data.
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid hall configuration"})
	}
	outRows := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		outRows = append(outRows, echo.Map{"label": r.Label, "seat_count": r.SeatCount})
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": ids, "rows": outRows})
}

// GetShowSeats handles GET /v1/shows/:id/seats.  It returns the full
// seat map with the currently occupied subset so a client can render
// available/occupied states in one request.
func (h *PublicHandler) GetShowSeats(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	show, err := h.ShowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.Engine.SeatMap(ctx, show.HallConfigID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build seat map"})
	}
	occupied, err := h.Engine.OccupiedSeats(ctx, id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seats":    seats,
		"occupied": occupied,
	})
}

// ListMovieReviews handles GET /v1/movies/:id/reviews.  The optional
// ?limit query bounds the number of reviews; the average always spans
// every review of the movie.
func (h *PublicHandler) ListMovieReviews(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, convErr := strconv.Atoi(raw); convErr == nil && n > 0 {
			limit = n
		}
	}
	reviews, average, err := h.ReviewRepo.ListForMovie(c.Request().Context(), id, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]echo.Map, 0, len(reviews))
	for _, rev := range reviews {
		item := echo.Map{
			"rating":     rev.Rating,
			"user_id":    rev.UserID,
			"created_at": rev.CreatedAt.UTC().Format(time.RFC3339),
		}
		if rev.Body != nil {
			item["body"] = *rev.Body
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "average_rating": average})
}

// parseID parses the numeric :id path parameter.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func publicMovie(m model.Movie) PublicMovie {
	return PublicMovie{
		ID:         m.ID,
		Title:      m.Title,
		Overview:   m.Overview,
		PosterPath: m.PosterPath,
		Genres:     m.Genres,
		RuntimeMin: m.RuntimeMin,
	}
}

func publicShow(s model.Show) PublicShow {
	return PublicShow{
		ID:         s.ID,
		MovieID:    s.MovieID,
		HallID:     s.HallConfigID,
		StartsAt:   s.StartsAt,
		PriceCents: s.PriceCents,
		Status:     s.Status,
	}
}
