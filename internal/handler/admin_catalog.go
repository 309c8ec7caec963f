package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/repository"
	"github.com/starcineplex/ticketing/internal/seatmap"
)

// AdminCatalogHandler manages the movie catalog, hall configurations
// and the show schedule. Routes are mounted behind the ADMIN role
// middleware.
type AdminCatalogHandler struct {
	MovieRepo *repository.MovieRepo
	HallRepo  *repository.HallRepo
	ShowRepo  *repository.ShowRepo
}

// NewAdminCatalogHandler constructs an AdminCatalogHandler.
func NewAdminCatalogHandler(movies *repository.MovieRepo, halls *repository.HallRepo, shows *repository.ShowRepo) *AdminCatalogHandler {
	if movies == nil || halls == nil || shows == nil {
		panic("nil dependency passed to NewAdminCatalogHandler")
	}
	return &AdminCatalogHandler{MovieRepo: movies, HallRepo: halls, ShowRepo: shows}
}

// createMovieRequest is the body for movie creation.
type createMovieRequest struct {
	Title      string  `json:"title"`
	Overview   *string `json:"overview"`
	PosterPath *string `json:"poster_path"`
	Genres     string  `json:"genres"`
	RuntimeMin uint32  `json:"runtime_min"`
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminCatalogHandler) CreateMovie(c echo.Context) error {
	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	m := &model.Movie{
		Title:      req.Title,
		Overview:   req.Overview,
		PosterPath: req.PosterPath,
		Genres:     req.Genres,
		RuntimeMin: req.RuntimeMin,
		Status:     model.MovieActive,
	}
	if err := h.MovieRepo.Create(c.Request().Context(), m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": publicMovie(*m)})
}

// UpdateMovie handles PUT /v1/admin/movies/:id.  The full editable
// field set is replaced; catalog state changes go through
// ArchiveMovie.
func (h *AdminCatalogHandler) UpdateMovie(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	m := &model.Movie{
		ID:         id,
		Title:      req.Title,
		Overview:   req.Overview,
		PosterPath: req.PosterPath,
		Genres:     req.Genres,
		RuntimeMin: req.RuntimeMin,
	}
	if err := h.MovieRepo.Update(c.Request().Context(), m); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": publicMovie(*m)})
}

// ArchiveMovie handles DELETE /v1/admin/movies/:id. Archived movies
// disappear from public listings but keep their bookings and reviews.
func (h *AdminCatalogHandler) ArchiveMovie(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	if err := h.MovieRepo.SetStatus(c.Request().Context(), id, model.MovieArchived); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie archived"})
}

// createHallRequest is the body for hall creation. Rows are ordered
// front to back; row labels are assigned automatically (A, B, ...).
type createHallRequest struct {
	Name string `json:"name"`
	Rows []int  `json:"rows"`
}

// CreateHall handles POST /v1/admin/halls. The layout is validated
// before anything is written: every row needs at least one seat.
func (h *AdminCatalogHandler) CreateHall(c echo.Context) error {
	var req createHallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	labels := seatmap.RowLabels(len(req.Rows))
	rows := make([]model.HallRow, 0, len(req.Rows))
	for i, count := range req.Rows {
		rows = append(rows, model.HallRow{Label: labels[i], SeatCount: count})
	}
	hall := &model.HallConfig{Name: req.Name, Rows: rows, IsActive: true}
	if err := h.HallRepo.Create(c.Request().Context(), hall); err != nil {
		var cfgErr *seatmap.InvalidConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": cfgErr.Error()})
		case errors.Is(err, repository.ErrDuplicate):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          hall.ID,
		"name":        hall.Name,
		"total_seats": hall.TotalSeats(),
	})
}

// ListHalls handles GET /v1/admin/halls.
func (h *AdminCatalogHandler) ListHalls(c echo.Context) error {
	halls, err := h.HallRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]echo.Map, 0, len(halls))
	for i := range halls {
		items = append(items, echo.Map{
			"id":          halls[i].ID,
			"name":        halls[i].Name,
			"is_active":   halls[i].IsActive,
			"total_seats": halls[i].TotalSeats(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SetHallActive handles PATCH /v1/admin/halls/:id/active.
func (h *AdminCatalogHandler) SetHallActive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.HallRepo.SetActive(c.Request().Context(), id, req.Active); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "hall updated"})
}

// createShowRequest is the body for show scheduling.
type createShowRequest struct {
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
}

// CreateShow handles POST /v1/admin/shows.
func (h *AdminCatalogHandler) CreateShow(c echo.Context) error {
	var req createShowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MovieID == 0 || req.HallID == 0 || req.StartsAt.IsZero() || req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie_id, hall_id, starts_at and price_cents are required"})
	}
	s := &model.Show{
		MovieID:      req.MovieID,
		HallConfigID: req.HallID,
		StartsAt:     req.StartsAt.UTC(),
		PriceCents:   req.PriceCents,
		Status:       model.ShowActive,
	}
	if err := h.ShowRepo.Create(c.Request().Context(), s); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found or inactive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": publicShow(*s)})
}

// ListShows handles GET /v1/admin/shows, including cancelled and
// completed entries.
func (h *AdminCatalogHandler) ListShows(c echo.Context) error {
	shows, err := h.ShowRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]PublicShow, 0, len(shows))
	for _, s := range shows {
		items = append(items, publicShow(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CancelShow handles DELETE /v1/admin/shows/:id. The show is
// soft-cancelled so existing bookings keep a valid reference.
func (h *AdminCatalogHandler) CancelShow(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.ShowRepo.Cancel(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrShowNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "show already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "show cancelled"})
}
