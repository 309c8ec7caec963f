package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/repository"
)

// FavoriteHandler lets customers keep a watch list of movies.
type FavoriteHandler struct {
	FavoriteRepo *repository.FavoriteRepo
	MovieRepo    *repository.MovieRepo
}

// NewFavoriteHandler constructs a FavoriteHandler.
func NewFavoriteHandler(favorites *repository.FavoriteRepo, movies *repository.MovieRepo) *FavoriteHandler {
	if favorites == nil || movies == nil {
		panic("nil dependency passed to NewFavoriteHandler")
	}
	return &FavoriteHandler{FavoriteRepo: favorites, MovieRepo: movies}
}

// Add handles POST /v1/movies/:id/favorite. Adding a movie that is
// already on the list succeeds without change.
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx := c.Request().Context()
	if _, err := h.MovieRepo.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	added, err := h.FavoriteRepo.Add(ctx, userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !added {
		return c.JSON(http.StatusOK, echo.Map{"message": "already a favorite"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "favorite added"})
}

// Remove handles DELETE /v1/movies/:id/favorite.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	removed, err := h.FavoriteRepo.Remove(c.Request().Context(), userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not a favorite"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "favorite removed"})
}

// Status handles GET /v1/movies/:id/favorite.  Clients use it to
// render the favorite toggle on a movie page.
func (h *FavoriteHandler) Status(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	fav, err := h.FavoriteRepo.IsFavorite(c.Request().Context(), userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"is_favorite": fav})
}

// ListMine handles GET /v1/my-favorites, newest first.
func (h *FavoriteHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movies, err := h.FavoriteRepo.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]PublicMovie, 0, len(movies))
	for _, m := range movies {
		items = append(items, publicMovie(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
