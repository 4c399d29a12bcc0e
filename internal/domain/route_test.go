package domain

import "testing"

func TestSummarize_AggregatesSegments(t *testing.T) {
	waypoints := []Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}}
	segments := []Segment{
		{
			From: waypoints[0], To: waypoints[1], Distance: 60,
			Cost: SegmentCost{FuelConsumedT: 1, CO2EmittedT: 3.114, DurationH: 3},
		},
		{
			From: waypoints[1], To: waypoints[2], Distance: 60,
			Cost: SegmentCost{FuelConsumedT: 1.5, CO2EmittedT: 4.671, DurationH: 4},
		},
	}

	result := Summarize(PlannerSimple, waypoints, segments, 50000, nil)

	if !result.Success {
		t.Error("expected Summarize to report success")
	}
	if result.TotalDistanceNM != 120 {
		t.Errorf("expected total distance 120, got %v", result.TotalDistanceNM)
	}
	if result.TotalFuelT != 2.5 {
		t.Errorf("expected total fuel 2.5, got %v", result.TotalFuelT)
	}
	if result.TotalDurationH != 7 {
		t.Errorf("expected total duration 7, got %v", result.TotalDurationH)
	}
	if result.Planner != PlannerSimple {
		t.Errorf("expected planner tag to be preserved, got %v", result.Planner)
	}
	if len(result.Waypoints) != 3 {
		t.Errorf("expected waypoints to be preserved, got %d", len(result.Waypoints))
	}
}

func TestSummarize_NoSegmentsIsEmptyButSuccessful(t *testing.T) {
	result := Summarize(PlannerGenetic, []Coordinate{{Lat: 1, Lon: 1}}, nil, 1000, []string{"degraded"})
	if !result.Success {
		t.Error("expected success even with no segments")
	}
	if result.TotalDistanceNM != 0 {
		t.Errorf("expected zero distance, got %v", result.TotalDistanceNM)
	}
	if len(result.DegradedReasons) != 1 {
		t.Errorf("expected degraded reasons to be preserved, got %v", result.DegradedReasons)
	}
}
