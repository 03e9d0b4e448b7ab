package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/core/ports"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// OccupancyService manages locally tracked shelter occupancy.
type OccupancyService struct {
	repo   ports.OccupancyRepository
	events ports.EventPublisher
	now    func() time.Time
}

// NewOccupancyService creates a new OccupancyService. events may be nil.
func NewOccupancyService(repo ports.OccupancyRepository, events ports.EventPublisher) *OccupancyService {
	return &OccupancyService{repo: repo, events: events, now: time.Now}
}

// Get returns the occupancy of a shelter.
func (s *OccupancyService) Get(ctx context.Context, shelterID int64) (*domain.Occupancy, error) {
	return s.repo.Get(ctx, shelterID)
}

// Update validates and stores new figures for a shelter, then announces
// them. A failed publish does not fail the update.
func (s *OccupancyService) Update(ctx context.Context, shelterID int64, capacity, occupancy int) (*domain.Occupancy, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: capacity must not be negative", domain.ErrInvalidArgument)
	}
	if occupancy < 0 || occupancy > capacity {
		return nil, fmt.Errorf("%w: occupancy must be between 0 and capacity", domain.ErrInvalidArgument)
	}

	occ := &domain.Occupancy{
		ShelterID: shelterID,
		Capacity:  capacity,
		Occupancy: occupancy,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Upsert(ctx, occ); err != nil {
		return nil, fmt.Errorf("store occupancy: %w", err)
	}
	metrics.OccupancyUpdates.Inc()

	if s.events != nil {
		if err := s.events.PublishOccupancy(ctx, occ); err != nil {
			logging.FromContext(ctx).Warn("publish occupancy", "shelter_id", shelterID, "error", err)
		}
	}
	return occ, nil
}
