// Package oceanmask provides a binary sea/land raster and an A* search
// over it for feasibility-only route planning: the shortest sea-only
// path between two points, with no cost model beyond distance.
package oceanmask

import (
	"container/heap"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ngs-io/voyage-router/internal/domain"
)

type maskFile struct {
	OriginLat  float64 `json:"originLat"`
	OriginLon  float64 `json:"originLon"`
	Resolution float64 `json:"resolution"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Mask       [][]int `json:"mask"`
}

// Cell is a raster coordinate (row, col).
type Cell struct {
	Row, Col int
}

// Grid is a loaded binary sea/land raster.
type Grid struct {
	originLat, originLon, resolution float64
	width, height                    int
	mask                             [][]int
}

var (
	defaultGrid     *Grid
	defaultGridOnce sync.Once
	defaultGridErr  error
)

// Default returns the process-wide ocean mask grid, loading it from
// OCEAN_MASK_PATH (or data/ocean_mask.json) on first use.
func Default() (*Grid, error) {
	defaultGridOnce.Do(func() {
		defaultGrid, defaultGridErr = Load(getEnv("OCEAN_MASK_PATH", "data/ocean_mask.json"))
	})
	return defaultGrid, defaultGridErr
}

// Load reads and parses a mask file from an explicit path, independent of
// the process-wide singleton. Tests and explicit-init callers use this to
// inject a fixture grid.
func Load(path string) (*Grid, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ocean mask: %w", err)
	}
	var mf maskFile
	if err := json.Unmarshal(b, &mf); err != nil {
		return nil, fmt.Errorf("parse ocean mask: %w", err)
	}
	if mf.Resolution <= 0 || mf.Width <= 0 || mf.Height <= 0 {
		return nil, fmt.Errorf("ocean mask has invalid dimensions")
	}
	return &Grid{
		originLat:  mf.OriginLat,
		originLon:  mf.OriginLon,
		resolution: mf.Resolution,
		width:      mf.Width,
		height:     mf.Height,
		mask:       mf.Mask,
	}, nil
}

// CellOf maps a coordinate to its raster cell, wrapping longitude across
// the antimeridian.
func (g *Grid) CellOf(p domain.Coordinate) Cell {
	row := int((g.originLat - p.Lat) / g.resolution)
	col := int((domain.NormalizeLon(p.Lon) - g.originLon) / g.resolution)
	col = ((col % g.width) + g.width) % g.width
	return Cell{Row: row, Col: col}
}

// CenterOf returns the coordinate at the center of a cell.
func (g *Grid) CenterOf(c Cell) domain.Coordinate {
	lat := g.originLat - (float64(c.Row)+0.5)*g.resolution
	lon := domain.NormalizeLon(g.originLon + (float64(c.Col)+0.5)*g.resolution)
	return domain.Coordinate{Lat: lat, Lon: lon}
}

// IsSeaCell reports whether a cell is navigable water.
func (g *Grid) IsSeaCell(c Cell) bool {
	if c.Row < 0 || c.Row >= g.height {
		return false
	}
	col := ((c.Col % g.width) + g.width) % g.width
	if c.Row >= len(g.mask) || col >= len(g.mask[c.Row]) {
		return false
	}
	return g.mask[c.Row][col] == 0
}

// NearestSeaCell spirals outward from the cell containing (lat, lon) up
// to maxRadius cells, returning the nearest sea cell found.
func (g *Grid) NearestSeaCell(p domain.Coordinate, maxRadius int) (Cell, bool) {
	if maxRadius <= 0 {
		maxRadius = 5
	}
	start := g.CellOf(p)
	if g.IsSeaCell(start) {
		return start, true
	}
	for r := 1; r <= maxRadius; r++ {
		for dr := -r; dr <= r; dr++ {
			for dc := -r; dc <= r; dc++ {
				if abs(dr) != r && abs(dc) != r {
					continue // only the ring at exactly radius r
				}
				cand := Cell{Row: start.Row + dr, Col: start.Col + dc}
				if g.IsSeaCell(cand) {
					return cand, true
				}
			}
		}
	}
	return Cell{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// neighbors8 returns the 8-connected neighbors of a cell, wrapping the
// column axis across the antimeridian but not the row axis (the poles
// terminate the search rather than wrapping).
func (g *Grid) neighbors8(c Cell) []Cell {
	out := make([]Cell, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			row := c.Row + dr
			if row < 0 || row >= g.height {
				continue
			}
			col := ((c.Col+dc)%g.width + g.width) % g.width
			out = append(out, Cell{Row: row, Col: col})
		}
	}
	return out
}

type openItem struct {
	cell     Cell
	f, g     float64
	index    int
}

type openHeap []*openItem

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *openHeap) Push(x interface{}) {
	item := x.(*openItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

func cellKey(c Cell) int64 { return int64(c.Row)<<32 | int64(uint32(c.Col)) }

// ErrSearchExhausted is returned by FindOceanPath when the iteration cap
// is reached, or the open set runs empty, before a path is found.
type ErrSearchExhausted struct {
	Iterations int
}

func (e *ErrSearchExhausted) Error() string {
	return fmt.Sprintf("ocean mask search exhausted after %d iterations", e.Iterations)
}

// FindOceanPath runs an 8-connected A* over sea cells from start to end,
// costed by great-circle distance between cell centers, and returns the
// resulting waypoint chain with the exact input coordinates as the
// first and last points.
func (g *Grid) FindOceanPath(start, end domain.Coordinate) ([]domain.Coordinate, error) {
	startCell, ok := g.NearestSeaCell(start, 5)
	if !ok {
		return nil, fmt.Errorf("no sea cell near start point")
	}
	endCell, ok := g.NearestSeaCell(end, 5)
	if !ok {
		return nil, fmt.Errorf("no sea cell near end point")
	}

	maxIterations := getEnvInt("ASTAR_MAX_ITERATIONS", 200000)

	gScore := map[int64]float64{cellKey(startCell): 0}
	parent := map[int64]Cell{}
	openSet := map[int64]bool{cellKey(startCell): true}

	h := &openHeap{}
	heap.Init(h)
	heap.Push(h, &openItem{cell: startCell, f: g.heuristic(startCell, endCell), g: 0})

	closed := map[int64]bool{}
	iterations := 0

	for h.Len() > 0 {
		iterations++
		if iterations > maxIterations {
			return nil, &ErrSearchExhausted{Iterations: iterations}
		}

		current := heap.Pop(h).(*openItem)
		delete(openSet, cellKey(current.cell))
		if closed[cellKey(current.cell)] {
			continue
		}
		closed[cellKey(current.cell)] = true

		if current.cell == endCell {
			return g.reconstructPath(parent, startCell, endCell, start, end), nil
		}

		for _, next := range g.neighbors8(current.cell) {
			if !g.IsSeaCell(next) || closed[cellKey(next)] {
				continue
			}
			tentativeG := current.g + domain.GreatCircleDistance(g.CenterOf(current.cell), g.CenterOf(next))
			if existing, ok := gScore[cellKey(next)]; ok && tentativeG >= existing {
				continue
			}
			gScore[cellKey(next)] = tentativeG
			parent[cellKey(next)] = current.cell
			f := tentativeG + g.heuristic(next, endCell)
			heap.Push(h, &openItem{cell: next, f: f, g: tentativeG})
			openSet[cellKey(next)] = true
		}
	}

	return nil, &ErrSearchExhausted{Iterations: iterations}
}

func (g *Grid) heuristic(c, end Cell) float64 {
	return domain.GreatCircleDistance(g.CenterOf(c), g.CenterOf(end))
}

func (g *Grid) reconstructPath(parent map[int64]Cell, start, end Cell, startPt, endPt domain.Coordinate) []domain.Coordinate {
	var cells []Cell
	cur := end
	for {
		cells = append([]Cell{cur}, cells...)
		if cur == start {
			break
		}
		cur = parent[cellKey(cur)]
	}

	pts := make([]domain.Coordinate, len(cells))
	for i, c := range cells {
		pts[i] = g.CenterOf(c)
	}
	pts[0] = startPt
	pts[len(pts)-1] = endPt
	return pts
}

// SeaRouteValidation reports which waypoints and segments of a route fall
// on land according to the ocean mask.
type SeaRouteValidation struct {
	Valid            bool
	LandIndices      []int
	CrossingIndices  []int
}

// ValidateSeaRoute checks every waypoint and every inter-waypoint segment
// (sampled every 5 sub-points) against the mask.
func (g *Grid) ValidateSeaRoute(waypoints []domain.Coordinate) SeaRouteValidation {
	var result SeaRouteValidation
	result.Valid = true

	for i, wp := range waypoints {
		if !g.IsSeaCell(g.CellOf(wp)) {
			result.LandIndices = append(result.LandIndices, i)
			result.Valid = false
		}
	}

	for i := 0; i+1 < len(waypoints); i++ {
		crosses := false
		for _, pt := range domain.SampleGreatCircle(waypoints[i], waypoints[i+1], 5) {
			if !g.IsSeaCell(g.CellOf(pt)) {
				crosses = true
				break
			}
		}
		if crosses {
			result.CrossingIndices = append(result.CrossingIndices, i)
			result.Valid = false
		}
	}

	return result
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
