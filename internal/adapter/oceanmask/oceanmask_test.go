package oceanmask

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ngs-io/voyage-router/internal/domain"
)

// writeMaskFixture writes a 10x10, 1-degree mask where column 5 (lon in
// [5,6)) is entirely land except for a single-cell "strait" at row 5,
// forcing any start-to-end path to detour through it.
func writeMaskFixture(t *testing.T) string {
	t.Helper()
	mask := make([][]int, 10)
	for r := range mask {
		mask[r] = make([]int, 10)
		for c := range mask[r] {
			if c == 5 && r != 5 {
				mask[r][c] = 1
			}
		}
	}
	rowsJSON := "["
	for i, row := range mask {
		if i > 0 {
			rowsJSON += ","
		}
		rowsJSON += "["
		for j, v := range row {
			if j > 0 {
				rowsJSON += ","
			}
			if v == 1 {
				rowsJSON += "1"
			} else {
				rowsJSON += "0"
			}
		}
		rowsJSON += "]"
	}
	rowsJSON += "]"

	content := `{"originLat":10,"originLon":0,"resolution":1,"width":10,"height":10,"mask":` + rowsJSON + `}`
	path := filepath.Join(t.TempDir(), "ocean_mask.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error loading a missing mask file")
	}
}

func TestGrid_CellAndCenterRoundTrip(t *testing.T) {
	path := writeMaskFixture(t)
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cell := g.CellOf(domain.Coordinate{Lat: 9.5, Lon: 0.5})
	if cell.Row != 0 || cell.Col != 0 {
		t.Errorf("expected cell (0,0), got %+v", cell)
	}
	center := g.CenterOf(cell)
	if center.Lat != 9.5 || center.Lon != 0.5 {
		t.Errorf("expected center (9.5, 0.5), got %+v", center)
	}
}

func TestGrid_IsSeaCell(t *testing.T) {
	path := writeMaskFixture(t)
	g, _ := Load(path)
	if g.IsSeaCell(Cell{Row: 0, Col: 5}) {
		t.Error("expected (0,5) to be land")
	}
	if !g.IsSeaCell(Cell{Row: 5, Col: 5}) {
		t.Error("expected the strait cell (5,5) to be sea")
	}
	if g.IsSeaCell(Cell{Row: -1, Col: 0}) {
		t.Error("expected out-of-bounds row to report false")
	}
}

func TestGrid_NearestSeaCell(t *testing.T) {
	path := writeMaskFixture(t)
	g, _ := Load(path)

	// (0,5) is land; nearest sea should be an adjacent cell.
	cell, ok := g.NearestSeaCell(g.CenterOf(Cell{Row: 0, Col: 5}), 5)
	if !ok {
		t.Fatal("expected to find a nearby sea cell")
	}
	if !g.IsSeaCell(cell) {
		t.Errorf("NearestSeaCell returned a non-sea cell %+v", cell)
	}
}

func TestFindOceanPath_RoutesThroughStrait(t *testing.T) {
	path := writeMaskFixture(t)
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	start := g.CenterOf(Cell{Row: 2, Col: 2})
	end := g.CenterOf(Cell{Row: 2, Col: 8})

	waypoints, err := g.FindOceanPath(start, end)
	if err != nil {
		t.Fatalf("FindOceanPath: %v", err)
	}
	if len(waypoints) < 2 {
		t.Fatalf("expected a multi-point path, got %v", waypoints)
	}
	if waypoints[0] != start {
		t.Errorf("expected first waypoint to be the exact start, got %+v", waypoints[0])
	}
	if waypoints[len(waypoints)-1] != end {
		t.Errorf("expected last waypoint to be the exact end, got %+v", waypoints[len(waypoints)-1])
	}

	for i := 0; i+1 < len(waypoints); i++ {
		c1 := g.CellOf(waypoints[i])
		c2 := g.CellOf(waypoints[i+1])
		if i > 0 && i+1 < len(waypoints)-1 {
			// interior cells must be 8-neighbors
			dr := abs(c1.Row - c2.Row)
			dc := abs(c1.Col - c2.Col)
			if dr > 1 || dc > 1 {
				t.Errorf("waypoints %d,%d are not 8-neighbors: %+v -> %+v", i, i+1, c1, c2)
			}
		}
	}

	// The strait cell (5,5) must appear somewhere on the route, since
	// column 5 is land everywhere else.
	foundStrait := false
	straitCenter := g.CenterOf(Cell{Row: 5, Col: 5})
	for _, wp := range waypoints {
		if g.CellOf(wp) == g.CellOf(straitCenter) {
			foundStrait = true
			break
		}
	}
	if !foundStrait {
		t.Error("expected the path to detour through the only sea gap in column 5")
	}
}

func TestValidateSeaRoute(t *testing.T) {
	path := writeMaskFixture(t)
	g, _ := Load(path)

	good := []domain.Coordinate{g.CenterOf(Cell{Row: 2, Col: 2}), g.CenterOf(Cell{Row: 2, Col: 3})}
	res := g.ValidateSeaRoute(good)
	if !res.Valid {
		t.Errorf("expected adjacent sea waypoints to validate, got %+v", res)
	}

	bad := []domain.Coordinate{g.CenterOf(Cell{Row: 2, Col: 2}), g.CenterOf(Cell{Row: 0, Col: 5})}
	res = g.ValidateSeaRoute(bad)
	if res.Valid {
		t.Error("expected a route touching a land cell to be invalid")
	}
	if len(res.LandIndices) == 0 {
		t.Error("expected land index to be reported")
	}
}
