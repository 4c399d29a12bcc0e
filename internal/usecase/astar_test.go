package usecase

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/ngs-io/voyage-router/internal/adapter/bathymetry"
	"github.com/ngs-io/voyage-router/internal/adapter/landmask"
	"github.com/ngs-io/voyage-router/internal/adapter/weather"
	"github.com/ngs-io/voyage-router/internal/domain"
)

// openOceanUseCase builds a RoutingUseCase whose land/bathymetry oracles
// have no backing dataset, so every point is open sea at effectively
// unlimited depth, and whose rng is seeded for reproducible test runs:
// a deterministic fixture for planner tests that don't need to exercise
// land avoidance.
func openOceanUseCase(t *testing.T) *RoutingUseCase {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "missing")
	land := landmask.New(missing+"-grid.json", missing+"-polys.geojson")
	bathy := bathymetry.New(missing+"-bathy.json", land)
	return &RoutingUseCase{
		land:    land,
		bathy:   bathy,
		weather: weather.New("", ""),
		rng:     rand.New(rand.NewSource(42)),
	}
}

func TestRunAStar_ReachesEndOverOpenOcean(t *testing.T) {
	uc := openOceanUseCase(t)

	req := AStarRequest{
		RouteRequest: RouteRequest{
			Start: domain.Coordinate{Lat: 10, Lon: 10},
			End:   domain.Coordinate{Lat: 12, Lon: 13},
		},
		GridResolution: 1,
	}

	result, err := uc.RunAStar(req)
	if err != nil {
		t.Fatalf("RunAStar returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success over open ocean, got message %q", result.Message)
	}
	if len(result.Waypoints) < 2 {
		t.Fatalf("expected at least 2 waypoints, got %d", len(result.Waypoints))
	}
	if result.Waypoints[0] != req.Start {
		t.Errorf("expected first waypoint to equal the requested start, got %+v", result.Waypoints[0])
	}
	if result.Waypoints[len(result.Waypoints)-1] != req.End {
		t.Errorf("expected last waypoint to equal the requested end, got %+v", result.Waypoints[len(result.Waypoints)-1])
	}
	if result.TotalFuelT <= 0 {
		t.Error("expected positive total fuel")
	}
	if result.Iterations <= 0 {
		t.Error("expected a positive iteration count to be reported")
	}
}

func TestRunAStar_InvalidVesselIsInputError(t *testing.T) {
	uc := openOceanUseCase(t)
	badVessel := DefaultVessel()
	badVessel.Draft = -1

	_, err := uc.RunAStar(AStarRequest{
		RouteRequest: RouteRequest{
			Start:  domain.Coordinate{Lat: 0, Lon: 0},
			End:    domain.Coordinate{Lat: 1, Lon: 1},
			Vessel: &badVessel,
		},
	})
	if err == nil {
		t.Fatal("expected an InputError for an invalid vessel")
	}
	if _, ok := err.(*domain.InputError); !ok {
		t.Errorf("expected *domain.InputError, got %T", err)
	}
}

func TestResolveGridResolution_ClampsToRange(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0.5},
		{-1, 0.5},
		{0.01, 0.1},
		{5, 2},
		{1, 1},
	}
	for _, c := range cases {
		req := AStarRequest{GridResolution: c.in}
		if got := req.resolveGridResolution(); got != c.want {
			t.Errorf("resolveGridResolution(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
