package domain

// PlannerKind identifies which algorithm produced a RouteResult.
type PlannerKind string

const (
	PlannerSimple  PlannerKind = "simple"
	PlannerAStar   PlannerKind = "astar"
	PlannerGenetic PlannerKind = "genetic"
)

// Segment is one leg of a planned route: a great-circle hop between two
// waypoints, priced by ComputeSegmentCost.
type Segment struct {
	From     Coordinate
	To       Coordinate
	Heading  float64
	Distance float64 // nautical miles
	Cost     SegmentCost
}

// RouteResult is the full output of a planning call: the waypoint chain,
// its per-segment breakdown, and the aggregate totals a caller compares
// planners by.
type RouteResult struct {
	Success         bool
	Planner         PlannerKind
	Waypoints       []Coordinate
	Segments        []Segment
	TotalDistanceNM float64
	TotalDurationH  float64
	TotalFuelT      float64
	TotalCO2T       float64
	CII             float64
	CIIRating       CIIRating
	DegradedReasons []string

	// Diagnostics, populated only by the planner that produced them.
	Message     string
	Generations int
	Iterations  int
	BestFitness float64
}

// Summarize folds a waypoint chain and its priced segments into the
// aggregate totals and CII rating, and returns the assembled RouteResult.
func Summarize(planner PlannerKind, waypoints []Coordinate, segments []Segment, dwt float64, degraded []string) RouteResult {
	r := RouteResult{
		Success:         true,
		Planner:         planner,
		Waypoints:       waypoints,
		Segments:        segments,
		DegradedReasons: degraded,
	}
	for _, s := range segments {
		r.TotalDistanceNM += s.Distance
		r.TotalDurationH += s.Cost.DurationH
		r.TotalFuelT += s.Cost.FuelConsumedT
		r.TotalCO2T += s.Cost.CO2EmittedT
	}
	r.CII, r.CIIRating = ComputeCII(r.TotalCO2T, r.TotalDistanceNM, dwt)
	return r
}

// Port is a named, navigable location in the port catalog.
type Port struct {
	Name    string
	Country string
	UNLOCODE string
	Coordinate
}
