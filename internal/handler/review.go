package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/repository"
)

// ReviewHandler lets customers rate movies. A user has one review
// per movie; posting again replaces it.
type ReviewHandler struct {
	ReviewRepo *repository.ReviewRepo
	MovieRepo  *repository.MovieRepo
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *repository.ReviewRepo, movies *repository.MovieRepo) *ReviewHandler {
	if reviews == nil || movies == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{ReviewRepo: reviews, MovieRepo: movies}
}

// reviewRequest is the body for review submission.
type reviewRequest struct {
	Rating uint8   `json:"rating"`
	Body   *string `json:"body"`
}

// Upsert handles PUT /v1/movies/:id/review.
func (h *ReviewHandler) Upsert(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	ctx := c.Request().Context()
	if _, err := h.MovieRepo.GetByID(ctx, movieID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rev := &model.Review{
		MovieID: movieID,
		UserID:  userID,
		Rating:  req.Rating,
		Body:    req.Body,
	}
	if err := h.ReviewRepo.Upsert(ctx, rev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review saved"})
}

// Delete handles DELETE /v1/movies/:id/review.
func (h *ReviewHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	movieID, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	removed, err := h.ReviewRepo.Delete(c.Request().Context(), userID, movieID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}
