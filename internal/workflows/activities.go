package workflows

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/supercivilian/supercivilian/internal/core/domain"
	"github.com/supercivilian/supercivilian/internal/pkg/metrics"
)

// ShelterLister is the part of the shelter service the warm-up needs.
type ShelterLister interface {
	ListNear(ctx context.Context, p domain.GeoPoint, radiusMeters, offset, limit int) ([]domain.ShelterView, error)
}

// WarmupActivities holds the activity implementations for the warm-up workflow.
type WarmupActivities struct {
	Shelters ShelterLister
}

// WarmPoint resolves the shelters around one point, which stores them in
// the proximity cache, and returns how many there are.
func (a *WarmupActivities) WarmPoint(ctx context.Context, p WarmPoint, radiusMeters int) (int, error) {
	point := domain.GeoPoint{Longitude: p.Longitude, Latitude: p.Latitude}
	if !point.Valid() {
		metrics.WarmupPoints.WithLabelValues("invalid").Inc()
		return 0, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("point %s out of range: %s", p.Name, point), "InvalidPoint", nil)
	}

	shelters, err := a.Shelters.ListNear(ctx, point, radiusMeters, 0, math.MaxInt32)
	if err != nil {
		metrics.WarmupPoints.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrInvalidArgument) {
			return 0, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidArgument", err)
		}
		return 0, fmt.Errorf("warm %s: %w", p.Name, err)
	}

	outcome := "ok"
	if len(shelters) == 0 {
		outcome = "empty"
	}
	metrics.WarmupPoints.WithLabelValues(outcome).Inc()
	activity.GetLogger(ctx).Info("warmed point", "point", p.Name, "shelters", len(shelters))
	return len(shelters), nil
}
