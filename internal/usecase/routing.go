// Package usecase orchestrates the routing engine's planners (the sea
// mask A*, the fuel-cost lattice A*, and the genetic optimizer) against
// the adapters in internal/adapter, and exposes the ambient port catalog.
package usecase

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ngs-io/voyage-router/internal/adapter/bathymetry"
	"github.com/ngs-io/voyage-router/internal/adapter/blockedzone"
	"github.com/ngs-io/voyage-router/internal/adapter/landmask"
	"github.com/ngs-io/voyage-router/internal/adapter/oceanmask"
	"github.com/ngs-io/voyage-router/internal/adapter/portcatalog"
	"github.com/ngs-io/voyage-router/internal/adapter/weather"
	"github.com/ngs-io/voyage-router/internal/domain"
)

// RoutingUseCase wires the land, bathymetry, ocean mask, blocked-zone and
// weather adapters into the three planner operations and the port
// catalog lookups. rng drives every randomized choice the genetic
// optimizer makes (waypoint jitter, tournament selection, crossover
// split, mutation target) so a caller that injects a seeded source gets
// reproducible runs; NewRoutingUseCase seeds it from wall-clock time.
type RoutingUseCase struct {
	land    *landmask.Oracle
	bathy   *bathymetry.Oracle
	weather *weather.Provider
	rng     *rand.Rand
}

// NewRoutingUseCase builds a use case backed by the process-wide default
// adapter instances.
func NewRoutingUseCase() *RoutingUseCase {
	return &RoutingUseCase{
		land:    landmask.Default(),
		bathy:   bathymetry.Default(),
		weather: weather.Default(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultVessel is the 50k-DWT container ship used whenever a request
// omits a vessel.
func DefaultVessel() domain.Vessel {
	return domain.Vessel{
		Name:                "Generic 50k Container",
		Type:                "container",
		DWT:                 50000,
		Length:              210,
		Beam:                32,
		Draft:               11,
		ServiceSpeed:        18,
		MaxSpeed:            22,
		FuelType:            domain.FuelHFO,
		FuelConsumptionRate: 35,
		EnginePower:         15000,
	}
}

// RouteRequest is the common input shape shared by all three planners.
type RouteRequest struct {
	Start             domain.Coordinate
	End               domain.Coordinate
	Vessel            *domain.Vessel
	WeatherEnabled    bool
	AvoidShallowWater bool
	MinDepth          float64
}

// fallbackRand backs random() for a RoutingUseCase built without an
// explicit rng (e.g. a zero-value struct in a test); NewRoutingUseCase
// always sets one, so production code never reaches this path.
var fallbackRand = rand.New(rand.NewSource(1))

func (u *RoutingUseCase) random() *rand.Rand {
	if u.rng != nil {
		return u.rng
	}
	return fallbackRand
}

func (r RouteRequest) resolveVessel() (domain.Vessel, error) {
	v := DefaultVessel()
	if r.Vessel != nil {
		v = *r.Vessel
	}
	if err := v.Validate(); err != nil {
		return domain.Vessel{}, err
	}
	return v, nil
}

func (r RouteRequest) resolveMinDepth(v domain.Vessel) float64 {
	if r.MinDepth > 0 {
		return r.MinDepth
	}
	minDepth := 2 * v.Draft
	if minDepth < 20 {
		minDepth = 20
	}
	return minDepth
}

// buildSegment prices one great-circle hop, fetching weather when
// enabled and applying no weather adjustment (a nil sample) otherwise.
func (u *RoutingUseCase) buildSegment(v domain.Vessel, p1, p2 domain.Coordinate, weatherEnabled bool) domain.Segment {
	heading := domain.Bearing(p1, p2)
	distance := domain.GreatCircleDistance(p1, p2)

	var sample *domain.WeatherSample
	if weatherEnabled {
		s := u.weather.FetchCombined(p1.Lat, p1.Lon, time.Now())
		sample = &s
	}

	cost := domain.ComputeSegmentCost(v, distance, v.ServiceSpeed, heading, sample)
	return domain.Segment{From: p1, To: p2, Heading: heading, Distance: distance, Cost: cost}
}

func (u *RoutingUseCase) priceRoute(planner domain.PlannerKind, v domain.Vessel, waypoints []domain.Coordinate, weatherEnabled bool, degraded []string) domain.RouteResult {
	segments := make([]domain.Segment, 0, len(waypoints)-1)
	for i := 0; i+1 < len(waypoints); i++ {
		segments = append(segments, u.buildSegment(v, waypoints[i], waypoints[i+1], weatherEnabled))
	}
	return domain.Summarize(planner, waypoints, segments, v.DWT, degraded)
}

// RunSimple plans a route with the binary ocean-mask A* (C5) and prices
// it with the vessel cost model. If the ocean mask dataset is
// unavailable or the mask search is exhausted, it degrades to a direct
// great-circle path rather than failing the call.
func (u *RoutingUseCase) RunSimple(req RouteRequest) (domain.RouteResult, error) {
	v, err := req.resolveVessel()
	if err != nil {
		return domain.RouteResult{}, err
	}

	var degraded []string
	waypoints := []domain.Coordinate{req.Start, req.End}

	grid, err := oceanmask.Default()
	if err != nil {
		degraded = append(degraded, fmt.Sprintf("ocean mask unavailable (%v); using direct great-circle path", err))
	} else {
		path, err := grid.FindOceanPath(req.Start, req.End)
		if err != nil {
			degraded = append(degraded, fmt.Sprintf("ocean mask search degraded (%v); using direct great-circle path", err))
		} else {
			waypoints = path
		}
	}

	result := u.priceRoute(domain.PlannerSimple, v, waypoints, req.WeatherEnabled, degraded)
	result.Success = true
	if len(degraded) > 0 {
		result.Message = degraded[0]
	}
	return result, nil
}

// CompareResult is the side-by-side diff between the simple planner and
// the genetic optimizer.
type CompareResult struct {
	Simple         domain.RouteResult
	Genetic        domain.RouteResult
	DistanceSaved  float64
	FuelSaved      float64
	CO2Saved       float64
	DurationSaved  float64
}

// Compare runs RunSimple and RunGenetic concurrently and reports how much
// the optimizer saved over the direct plan.
func (u *RoutingUseCase) Compare(req RouteRequest) (CompareResult, error) {
	type outcome struct {
		result domain.RouteResult
		err    error
	}
	simpleCh := make(chan outcome, 1)
	geneticCh := make(chan outcome, 1)

	go func() {
		r, err := u.RunSimple(req)
		simpleCh <- outcome{r, err}
	}()
	go func() {
		r, err := u.RunGenetic(GeneticRequest{RouteRequest: req})
		geneticCh <- outcome{r, err}
	}()

	simpleOut := <-simpleCh
	geneticOut := <-geneticCh

	if simpleOut.err != nil {
		return CompareResult{}, simpleOut.err
	}
	if geneticOut.err != nil {
		return CompareResult{}, geneticOut.err
	}

	return CompareResult{
		Simple:        simpleOut.result,
		Genetic:       geneticOut.result,
		DistanceSaved: simpleOut.result.TotalDistanceNM - geneticOut.result.TotalDistanceNM,
		FuelSaved:     simpleOut.result.TotalFuelT - geneticOut.result.TotalFuelT,
		CO2Saved:      simpleOut.result.TotalCO2T - geneticOut.result.TotalCO2T,
		DurationSaved: simpleOut.result.TotalDurationH - geneticOut.result.TotalDurationH,
	}, nil
}

// ListPorts delegates to the port catalog.
func (u *RoutingUseCase) ListPorts(limit int) []domain.Port {
	return portcatalog.ListPorts(limit)
}

// SearchPorts delegates to the port catalog.
func (u *RoutingUseCase) SearchPorts(query string, limit int) []domain.Port {
	return portcatalog.SearchPorts(query, limit)
}

// ListBlockedZones delegates to the blocked-zone oracle, for diagnostic
// display of the exclusion discs currently in effect.
func (u *RoutingUseCase) ListBlockedZones() []blockedzone.Disc {
	return blockedzone.Discs()
}

// blockedZoneBlocksSegment reports whether a segment crosses a blocked
// zone when the avoidBlockedZones toggle is set. The genetic planner's
// fitness function penalizes such a segment the same as a land crossing;
// its candidate generation, crossover, mutation and final repair pass do
// not check blocked zones. RunAStar applies the toggle on its own, by
// excluding lattice nodes that lie inside a zone.
func blockedZoneBlocksSegment(avoid bool, p1, p2 domain.Coordinate) bool {
	return avoid && blockedzone.SegmentCrossesBlockedZone(p1, p2)
}
