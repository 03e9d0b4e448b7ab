package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/supercivilian/supercivilian/internal/core/domain"
)

type fakeLister struct {
	mu    sync.Mutex
	calls []domain.GeoPoint
	fn    func(p domain.GeoPoint) ([]domain.ShelterView, error)
}

func (f *fakeLister) ListNear(ctx context.Context, p domain.GeoPoint, radius, offset, limit int) ([]domain.ShelterView, error) {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(p)
	}
	return make([]domain.ShelterView, 2), nil
}

func TestWarmupWorkflow_DefaultPoints(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()

	lister := &fakeLister{}
	env.RegisterActivity(&WarmupActivities{Shelters: lister})

	env.ExecuteWorkflow(WarmupWorkflow, WarmupInput{RadiusMeters: 30000})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}

	var res WarmupResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Warmed != len(DefaultPoints) {
		t.Errorf("expected %d warmed points, got %d", len(DefaultPoints), res.Warmed)
	}
	if res.Shelters != 2*len(DefaultPoints) {
		t.Errorf("expected %d shelters, got %d", 2*len(DefaultPoints), res.Shelters)
	}
	if len(lister.calls) != len(DefaultPoints) {
		t.Errorf("expected one lookup per point, got %d", len(lister.calls))
	}
}

func TestWarmupWorkflow_FailedPointDoesNotFailRun(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()

	lister := &fakeLister{fn: func(p domain.GeoPoint) ([]domain.ShelterView, error) {
		return make([]domain.ShelterView, 1), nil
	}}
	env.RegisterActivity(&WarmupActivities{Shelters: lister})

	input := WarmupInput{
		Points: []WarmPoint{
			{Name: "Kraków", Longitude: 19.9450, Latitude: 50.0647},
			{Name: "Nowhere", Longitude: 200, Latitude: 50},
		},
		RadiusMeters: 1000,
	}
	env.ExecuteWorkflow(WarmupWorkflow, input)

	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var res WarmupResult
	if err := env.GetWorkflowResult(&res); err != nil {
		t.Fatal(err)
	}
	if res.Warmed != 1 || len(res.Failed) != 1 || res.Failed[0] != "Nowhere" {
		t.Errorf("unexpected result %+v", res)
	}
	// The invalid point never reaches the lister.
	if len(lister.calls) != 1 {
		t.Errorf("expected 1 lookup, got %d", len(lister.calls))
	}
}

func TestWarmPoint_Activity(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()

	lister := &fakeLister{fn: func(p domain.GeoPoint) ([]domain.ShelterView, error) {
		return make([]domain.ShelterView, 5), nil
	}}
	a := &WarmupActivities{Shelters: lister}
	env.RegisterActivity(a)

	val, err := env.ExecuteActivity(a.WarmPoint, WarmPoint{Name: "Warszawa", Longitude: 21.0122, Latitude: 52.2297}, 30000)
	if err != nil {
		t.Fatalf("activity error: %v", err)
	}
	var n int
	if err := val.Get(&n); err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("expected 5 shelters, got %d", n)
	}
}

func TestWarmPoint_InvalidArgumentIsNotRetried(t *testing.T) {
	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()

	lister := &fakeLister{fn: func(p domain.GeoPoint) ([]domain.ShelterView, error) {
		return nil, errors.Join(errors.New("radius rejected"), domain.ErrInvalidArgument)
	}}
	a := &WarmupActivities{Shelters: lister}
	env.RegisterActivity(a)

	_, err := env.ExecuteActivity(a.WarmPoint, WarmPoint{Name: "Opole", Longitude: 17.9213, Latitude: 50.6751}, 30000)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(lister.calls) != 1 {
		t.Errorf("expected a single attempt, got %d", len(lister.calls))
	}
}
