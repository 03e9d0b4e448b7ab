package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// WarmPoint is one location whose nearby shelters are kept cached.
type WarmPoint struct {
	Name      string
	Longitude float64
	Latitude  float64
}

// DefaultPoints are the voivodeship seats, where most lookups come from.
var DefaultPoints = []WarmPoint{
	{Name: "Białystok", Longitude: 23.1688, Latitude: 53.1325},
	{Name: "Bydgoszcz", Longitude: 18.0084, Latitude: 53.1235},
	{Name: "Gdańsk", Longitude: 18.6466, Latitude: 54.3520},
	{Name: "Gorzów Wielkopolski", Longitude: 15.2288, Latitude: 52.7368},
	{Name: "Katowice", Longitude: 19.0238, Latitude: 50.2649},
	{Name: "Kielce", Longitude: 20.6286, Latitude: 50.8661},
	{Name: "Kraków", Longitude: 19.9450, Latitude: 50.0647},
	{Name: "Lublin", Longitude: 22.5684, Latitude: 51.2465},
	{Name: "Łódź", Longitude: 19.4560, Latitude: 51.7592},
	{Name: "Olsztyn", Longitude: 20.4801, Latitude: 53.7784},
	{Name: "Opole", Longitude: 17.9213, Latitude: 50.6751},
	{Name: "Poznań", Longitude: 16.9252, Latitude: 52.4064},
	{Name: "Rzeszów", Longitude: 22.0047, Latitude: 50.0412},
	{Name: "Szczecin", Longitude: 14.5528, Latitude: 53.4285},
	{Name: "Warszawa", Longitude: 21.0122, Latitude: 52.2297},
	{Name: "Wrocław", Longitude: 17.0385, Latitude: 51.1079},
}

// WarmupInput is the input for the warm-up workflow. An empty Points list
// means DefaultPoints.
type WarmupInput struct {
	Points       []WarmPoint
	RadiusMeters int
}

// WarmupResult summarises one run.
type WarmupResult struct {
	Warmed   int
	Failed   []string
	Shelters int
}

// WarmupWorkflow fans out one WarmPoint activity per point so the proximity
// cache is filled before users ask. A failing point is reported in the
// result and does not fail the run.
func WarmupWorkflow(ctx workflow.Context, input WarmupInput) (WarmupResult, error) {
	logger := workflow.GetLogger(ctx)

	points := input.Points
	if len(points) == 0 {
		points = DefaultPoints
	}
	logger.Info("Starting cache warm-up", "points", len(points), "radius", input.RadiusMeters)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	futures := make([]workflow.Future, len(points))
	for i, p := range points {
		futures[i] = workflow.ExecuteActivity(ctx, "WarmPoint", p, input.RadiusMeters)
	}

	var result WarmupResult
	for i, f := range futures {
		var n int
		if err := f.Get(ctx, &n); err != nil {
			logger.Warn("warm-up point failed", "point", points[i].Name, "error", err)
			result.Failed = append(result.Failed, points[i].Name)
			continue
		}
		result.Warmed++
		result.Shelters += n
	}

	logger.Info("Cache warm-up finished", "warmed", result.Warmed, "failed", len(result.Failed), "shelters", result.Shelters)
	return result, nil
}
