package repository

import (
	"context"
	"errors"

	"github.com/starcineplex/ticketing/internal/model"
	"github.com/starcineplex/ticketing/internal/reservation"
)

// Catalog adapts the show and hall repositories to the read-only
// view the reservation engine consumes.  Repository sentinels are
// mapped to the engine's error vocabulary at this boundary.
type Catalog struct {
	Shows *ShowRepo
	Halls *HallRepo
}

// NewCatalog returns a Catalog over the given repositories.
func NewCatalog(shows *ShowRepo, halls *HallRepo) *Catalog {
	return &Catalog{Shows: shows, Halls: halls}
}

// ShowByID implements reservation.Catalog.
func (c *Catalog) ShowByID(ctx context.Context, showID uint64) (*model.Show, error) {
	show, err := c.Shows.GetByID(ctx, showID)
	if err != nil {
		if errors.Is(err, ErrShowNotFound) {
			return nil, reservation.ErrShowNotFound
		}
		return nil, err
	}
	return show, nil
}

// HallRows implements reservation.Catalog.
func (c *Catalog) HallRows(ctx context.Context, hallConfigID uint64) ([]model.HallRow, error) {
	return c.Halls.Rows(ctx, hallConfigID)
}
