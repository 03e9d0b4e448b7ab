package ports

import (
	"context"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

// OccupancyRepository persists locally tracked shelter occupancy.
type OccupancyRepository interface {
	Get(ctx context.Context, shelterID int64) (*domain.Occupancy, error)
	Upsert(ctx context.Context, occ *domain.Occupancy) error
}
