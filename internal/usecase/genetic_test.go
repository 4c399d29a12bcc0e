package usecase

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ngs-io/voyage-router/internal/adapter/bathymetry"
	"github.com/ngs-io/voyage-router/internal/adapter/landmask"
	"github.com/ngs-io/voyage-router/internal/adapter/weather"
	"github.com/ngs-io/voyage-router/internal/domain"
)

func TestRunGenetic_OverOpenOcean(t *testing.T) {
	uc := openOceanUseCase(t)

	start := domain.Coordinate{Lat: 37.9416, Lon: 23.6470} // Piraeus
	end := domain.Coordinate{Lat: 41.3851, Lon: 2.1734}    // Barcelona

	result, err := uc.RunGenetic(GeneticRequest{
		RouteRequest: RouteRequest{Start: start, End: end},
		PopulationSize: 8,
		Generations:    5,
		NumWaypoints:   4,
	})
	if err != nil {
		t.Fatalf("RunGenetic returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected genetic planner to always report success")
	}
	if result.Waypoints[0] != start {
		t.Errorf("expected first waypoint to equal the requested start, got %+v", result.Waypoints[0])
	}
	if result.Waypoints[len(result.Waypoints)-1] != end {
		t.Errorf("expected last waypoint to equal the requested end, got %+v", result.Waypoints[len(result.Waypoints)-1])
	}
	if result.TotalFuelT < 0 || result.TotalCO2T < 0 {
		t.Errorf("expected non-negative fuel/CO2, got fuel=%v co2=%v", result.TotalFuelT, result.TotalCO2T)
	}

	var summed float64
	for _, s := range result.Segments {
		summed += s.Distance
	}
	if math.Abs(summed-result.TotalDistanceNM) > 1e-6 {
		t.Errorf("totalDistance %v does not match summed segment distances %v", result.TotalDistanceNM, summed)
	}

	cf, _ := domain.CarbonFactor(domain.FuelHFO)
	wantCO2 := result.TotalFuelT * cf
	if math.Abs(result.TotalCO2T-wantCO2) > 1e-9 {
		t.Errorf("expected CO2 = fuel*CF exactly with weather disabled, got %v want %v", result.TotalCO2T, wantCO2)
	}
}

func TestRunGenetic_RepairsLandCrossing(t *testing.T) {
	// A single 10-degree-wide land cell sits directly on the equatorial
	// row between start and end; the rows immediately north and south of
	// it are left open, giving both the candidate-rejection sampling and
	// the repair pass's perpendicular/grid search a nearby (10-20 degree)
	// sea gap to route through.
	dir := t.TempDir()
	gridPath := filepath.Join(dir, "land_grid.json")
	rows := make([][]int, 18) // 10-degree cells, rows for lat 90..-90
	for i := range rows {
		// Row 8 covers lat (0,10] and carries land at lon [0,10); every
		// other row, including its north (row 7, lat (10,20]) and south
		// (row 9, lat (-10,0]) neighbors, is open ocean.
		if i == 8 {
			rows[i] = []int{18, 1}
		} else {
			rows[i] = []int{}
		}
	}
	if err := os.WriteFile(gridPath, []byte(gridJSON(rows)), 0o644); err != nil {
		t.Fatalf("write land fixture: %v", err)
	}

	land := landmask.New(gridPath, filepath.Join(dir, "missing.geojson"))
	bathy := bathymetry.New(filepath.Join(dir, "missing-bathy.json"), land)
	uc := &RoutingUseCase{land: land, bathy: bathy, weather: weather.New("", ""), rng: rand.New(rand.NewSource(7))}

	start := domain.Coordinate{Lat: 5, Lon: -5}
	end := domain.Coordinate{Lat: 5, Lon: 15}

	if !land.SegmentCrossesLand(start, end) {
		t.Fatal("fixture setup invalid: direct segment should cross the land band")
	}

	result, err := uc.RunGenetic(GeneticRequest{
		RouteRequest: RouteRequest{Start: start, End: end},
		PopulationSize: 10,
		Generations:    8,
		NumWaypoints:   4,
	})
	if err != nil {
		t.Fatalf("RunGenetic returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected genetic planner to report success even with repair needed")
	}

	for i := 0; i+1 < len(result.Waypoints); i++ {
		if land.SegmentCrossesLand(result.Waypoints[i], result.Waypoints[i+1]) {
			t.Errorf("segment %d (%+v -> %+v) still crosses land after repair",
				i, result.Waypoints[i], result.Waypoints[i+1])
		}
	}
}

func TestRunGenetic_ReproducibleWithSameSeed(t *testing.T) {
	newUC := func() *RoutingUseCase {
		missing := filepath.Join(t.TempDir(), "missing")
		land := landmask.New(missing+"-grid.json", missing+"-polys.geojson")
		bathy := bathymetry.New(missing+"-bathy.json", land)
		return &RoutingUseCase{
			land:    land,
			bathy:   bathy,
			weather: weather.New("", ""),
			rng:     rand.New(rand.NewSource(99)),
		}
	}

	req := GeneticRequest{
		RouteRequest: RouteRequest{
			Start: domain.Coordinate{Lat: 10, Lon: 10},
			End:   domain.Coordinate{Lat: 15, Lon: 20},
		},
		PopulationSize: 8,
		Generations:    5,
		NumWaypoints:   3,
	}

	first, err := newUC().RunGenetic(req)
	if err != nil {
		t.Fatalf("first RunGenetic returned error: %v", err)
	}
	second, err := newUC().RunGenetic(req)
	if err != nil {
		t.Fatalf("second RunGenetic returned error: %v", err)
	}

	if !reflect.DeepEqual(first.Waypoints, second.Waypoints) {
		t.Errorf("expected identical waypoints for the same seed, got %+v vs %+v", first.Waypoints, second.Waypoints)
	}
	if first.TotalFuelT != second.TotalFuelT || first.BestFitness != second.BestFitness {
		t.Errorf("expected identical fuel/fitness for the same seed, got (%v,%v) vs (%v,%v)",
			first.TotalFuelT, first.BestFitness, second.TotalFuelT, second.BestFitness)
	}
}

func gridJSON(rows [][]int) string {
	out := `{"resolution":10,"width":36,"height":18,"originLat":90,"originLon":-180,"rows":[`
	for i, r := range rows {
		if i > 0 {
			out += ","
		}
		out += "["
		for j, v := range r {
			if j > 0 {
				out += ","
			}
			out += itoaGenetic(v)
		}
		out += "]"
	}
	out += "]}"
	return out
}

func itoaGenetic(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
