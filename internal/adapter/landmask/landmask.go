// Package landmask answers whether a coordinate or a great-circle segment
// crosses land, backed by a coarse RLE raster refined against a GeoJSON
// coastline polygon set.
package landmask

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/ngs-io/voyage-router/internal/domain"
)

// gridFile is the on-disk shape of the land grid dataset: a raster whose
// rows are run-length encoded as alternating (start, length) pairs of
// land columns.
type gridFile struct {
	Resolution float64   `json:"resolution"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	OriginLat  float64   `json:"originLat"`
	OriginLon  float64   `json:"originLon"`
	Rows       [][]int   `json:"rows"`
}

func (g *gridFile) isLandCell(row, col int) bool {
	if row < 0 || row >= len(g.Rows) {
		return false
	}
	pairs := g.Rows[row]
	for i := 0; i+1 < len(pairs); i += 2 {
		start, length := pairs[i], pairs[i+1]
		if col >= start && col < start+length {
			return true
		}
	}
	return false
}

// ringEntry adapts a coastline polygon ring to rtreego.Spatial so it can
// be inserted into an R-tree keyed by the ring's bounding box, following
// the beetlebugorg-s57 ChartIndex pattern of indexing bounding boxes
// rather than scanning every ring.
type ringEntry struct {
	ring orb.Ring
	rect rtreego.Rect
}

func (e ringEntry) Bounds() rtreego.Rect { return e.rect }

func newRingEntry(ring orb.Ring) (ringEntry, bool) {
	if len(ring) < 3 {
		return ringEntry{}, false
	}
	bound := ring.Bound()
	w := bound.Max[0] - bound.Min[0]
	h := bound.Max[1] - bound.Min[1]
	if w <= 0 {
		w = 1e-9
	}
	if h <= 0 {
		h = 1e-9
	}
	rect, err := rtreego.NewRect(rtreego.Point{bound.Min[0], bound.Min[1]}, []float64{w, h})
	if err != nil {
		return ringEntry{}, false
	}
	return ringEntry{ring: ring, rect: rect}, true
}

// Oracle answers land/sea queries. The zero value is usable: the backing
// datasets load lazily on first use (from the paths below, or their
// env-var/data/ defaults) and any load failure degrades the oracle to an
// open-sea assumption rather than panicking.
type Oracle struct {
	once sync.Once

	gridPath string
	polyPath string

	grid  *gridFile
	rtree *rtreego.Rtree

	degraded bool
}

var (
	defaultOracle     *Oracle
	defaultOracleOnce sync.Once
)

// Default returns the process-wide land oracle, constructed from the
// LAND_GRID_PATH / LAND_POLYGONS_PATH environment variables (or their
// data/ defaults) on first use.
func Default() *Oracle {
	defaultOracleOnce.Do(func() {
		defaultOracle = &Oracle{}
	})
	return defaultOracle
}

// New builds an Oracle pinned to the given dataset paths, loaded eagerly
// rather than lazily. Tests and explicit-init callers use this instead of
// Default so they can inject fixture datasets without racing the
// environment-driven singleton's once.Do.
func New(gridPath, polyPath string) *Oracle {
	o := &Oracle{gridPath: gridPath, polyPath: polyPath}
	o.ensureLoaded()
	return o
}

func (o *Oracle) ensureLoaded() {
	o.once.Do(func() {
		gridPath := o.gridPath
		if gridPath == "" {
			gridPath = getEnv("LAND_GRID_PATH", "data/land_grid.json")
		}
		polyPath := o.polyPath
		if polyPath == "" {
			polyPath = getEnv("LAND_POLYGONS_PATH", "data/land_polygons.geojson")
		}

		grid, err := loadGrid(gridPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: land grid unavailable (%v); land oracle degraded to open-sea assumption\n", err)
			o.degraded = true
			return
		}
		o.grid = grid

		tree, err := loadPolygons(polyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: land polygons unavailable (%v); coastal refinement disabled\n", err)
			return
		}
		o.rtree = tree
	})
}

func loadGrid(path string) (*gridFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read land grid: %w", err)
	}
	var g gridFile
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("parse land grid: %w", err)
	}
	if g.Resolution <= 0 || g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("land grid has invalid dimensions")
	}
	return &g, nil
}

func loadPolygons(path string) (*rtreego.Rtree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read land polygons: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("parse land polygons: %w", err)
	}

	tree := rtreego.NewTree(2, 25, 50)
	inserted := 0
	for _, feature := range fc.Features {
		rings := ringsOf(feature.Geometry)
		for _, ring := range rings {
			entry, ok := newRingEntry(ring)
			if !ok {
				continue
			}
			tree.Insert(entry)
			inserted++
		}
	}
	if inserted == 0 {
		return nil, fmt.Errorf("land polygons file contained no usable rings")
	}
	return tree, nil
}

func ringsOf(g orb.Geometry) []orb.Ring {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) > 0 {
			return []orb.Ring{geom[0]}
		}
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(geom))
		for _, poly := range geom {
			if len(poly) > 0 {
				rings = append(rings, poly[0])
			}
		}
		return rings
	case orb.LineString:
		return []orb.Ring{orb.Ring(geom)}
	}
	return nil
}

// IsLand reports whether the given coordinate lies on land. It degrades to
// false (open sea) if the backing datasets failed to load.
func (o *Oracle) IsLand(p domain.Coordinate) bool {
	o.ensureLoaded()
	if o.grid == nil {
		return false
	}

	row := int(math.Floor((o.grid.OriginLat - p.Lat) / o.grid.Resolution))
	lon := domain.NormalizeLon(p.Lon)
	col := int(math.Floor((lon - o.grid.OriginLon) / o.grid.Resolution))
	if col < 0 {
		col += o.grid.Width
	}
	col = col % o.grid.Width

	if o.grid.isLandCell(row, col) {
		return true
	}

	if o.rtree == nil {
		return false
	}
	rect, err := rtreego.NewRect(rtreego.Point{lon, p.Lat}, []float64{1e-9, 1e-9})
	if err != nil {
		return false
	}
	pt := orb.Point{lon, p.Lat}
	for _, spatial := range o.rtree.SearchIntersect(rect) {
		entry := spatial.(ringEntry)
		if planar.RingContains(entry.ring, pt) {
			return true
		}
	}
	return false
}

const kmPerNM = 1.852

// SegmentCrossesLand samples the great-circle path between p1 and p2 at
// roughly 2km intervals (at least 20 samples) and reports whether any
// sample, including both endpoints, lies on land.
func (o *Oracle) SegmentCrossesLand(p1, p2 domain.Coordinate) bool {
	distanceKm := domain.GreatCircleDistance(p1, p2) * kmPerNM
	samples := int(math.Ceil(distanceKm / 2))
	if samples < 20 {
		samples = 20
	}
	return o.SegmentCrossesLandSampled(p1, p2, samples)
}

// SegmentCrossesLandSampled is SegmentCrossesLand with an explicit sample
// count, used by callers (genetic waypoint generation, crossover repair)
// that need a cheaper or denser check than the default.
func (o *Oracle) SegmentCrossesLandSampled(p1, p2 domain.Coordinate, samples int) bool {
	if o.IsLand(p1) || o.IsLand(p2) {
		return true
	}
	if samples < 2 {
		samples = 2
	}
	for _, pt := range domain.SampleGreatCircle(p1, p2, samples) {
		if o.IsLand(pt) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
