// Package bathymetry answers water-depth queries from a tiered set of
// JSON patches, with a coastline-distance fallback when no patch covers a
// point, and a short-lived cache for repeated lookups.
package bathymetry

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/alitto/pond"

	"github.com/ngs-io/voyage-router/internal/adapter/landmask"
	"github.com/ngs-io/voyage-router/internal/domain"
)

// patch is one regional or global depth grid.
type patch struct {
	Resolution float64     `json:"resolution"`
	OriginLat  float64     `json:"originLat"`
	OriginLon  float64     `json:"originLon"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Depths     [][]float64 `json:"depths"`
}

func (p patch) depthAt(lat, lon float64) (float64, bool) {
	if p.Resolution <= 0 || p.Width <= 0 || p.Height <= 0 {
		return 0, false
	}
	row := int(math.Floor((p.OriginLat - lat) / p.Resolution))
	col := int(math.Floor((domain.NormalizeLon(lon) - p.OriginLon) / p.Resolution))
	if row < 0 || row >= p.Height || col < 0 || col >= p.Width {
		return 0, false
	}
	if row >= len(p.Depths) || col >= len(p.Depths[row]) {
		return 0, false
	}
	return p.Depths[row][col], true
}

// tier is a resolution band that may describe either a single inline grid
// or a set of regional patches at that resolution.
type tier struct {
	Resolution float64     `json:"resolution"`
	Regions    []patch     `json:"regions,omitempty"`
	OriginLat  float64     `json:"originLat,omitempty"`
	OriginLon  float64     `json:"originLon,omitempty"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	Depths     [][]float64 `json:"depths,omitempty"`
}

func (t tier) patches() []patch {
	if len(t.Regions) > 0 {
		return t.Regions
	}
	if t.Depths != nil {
		return []patch{{
			Resolution: t.Resolution,
			OriginLat:  t.OriginLat,
			OriginLon:  t.OriginLon,
			Width:      t.Width,
			Height:     t.Height,
			Depths:     t.Depths,
		}}
	}
	return nil
}

type datasetFile struct {
	UltraHighRes tier `json:"ultraHighRes"`
	HighRes      tier `json:"highRes"`
	StandardRes  tier `json:"standardRes"`
}

type cacheEntry struct {
	depth     float64
	expiresAt time.Time
}

const cacheTTL = 7 * 24 * time.Hour

// Oracle answers depth(lat, lon) queries. Build one with Default or New:
// the zero value has no cache map and no land oracle, and is not usable.
// Datasets load lazily and a load failure degrades every lookup to the
// coastline-distance fallback rather than failing the call.
type Oracle struct {
	once sync.Once
	path string
	data *datasetFile
	land *landmask.Oracle

	mu        sync.RWMutex
	cache     map[[2]float64]cacheEntry
	cacheHits int64
}

var (
	defaultOracle     *Oracle
	defaultOracleOnce sync.Once
)

// Default returns the process-wide bathymetry oracle.
func Default() *Oracle {
	defaultOracleOnce.Do(func() {
		defaultOracle = &Oracle{
			land:  landmask.Default(),
			cache: make(map[[2]float64]cacheEntry),
		}
	})
	return defaultOracle
}

// New builds an Oracle pinned to the given dataset path and land oracle,
// loaded eagerly. Tests and explicit-init callers use this instead of
// Default so they can inject a fixture dataset.
func New(path string, land *landmask.Oracle) *Oracle {
	o := &Oracle{path: path, land: land, cache: make(map[[2]float64]cacheEntry)}
	o.ensureLoaded()
	return o
}

func (o *Oracle) ensureLoaded() {
	o.once.Do(func() {
		path := o.path
		if path == "" {
			path = getEnv("BATHYMETRY_PATH", "data/bathymetry.json")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: bathymetry dataset unavailable (%v); falling back to coastline-distance depth bands\n", err)
			return
		}
		var df datasetFile
		if err := json.Unmarshal(b, &df); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: bathymetry dataset malformed (%v); falling back to coastline-distance depth bands\n", err)
			return
		}
		o.data = &df
	})
}

func cacheKey(lat, lon float64) [2]float64 {
	round := func(x float64) float64 { return math.Round(x*1e4) / 1e4 }
	return [2]float64{round(lat), round(lon)}
}

// Depth returns the water depth in meters at the given coordinate: 0 for
// land, positive for water.
func (o *Oracle) Depth(p domain.Coordinate) float64 {
	o.ensureLoaded()

	key := cacheKey(p.Lat, p.Lon)
	o.mu.RLock()
	if entry, ok := o.cache[key]; ok && time.Now().Before(entry.expiresAt) {
		o.cacheHits++
		o.mu.RUnlock()
		return entry.depth
	}
	o.mu.RUnlock()

	depth := o.lookup(p)

	o.mu.Lock()
	o.cache[key] = cacheEntry{depth: depth, expiresAt: time.Now().Add(cacheTTL)}
	o.mu.Unlock()

	return depth
}

func (o *Oracle) lookup(p domain.Coordinate) float64 {
	if o.data != nil {
		for _, t := range []tier{o.data.UltraHighRes, o.data.HighRes, o.data.StandardRes} {
			for _, patch := range t.patches() {
				if d, ok := patch.depthAt(p.Lat, p.Lon); ok {
					return d
				}
			}
		}
	}
	return o.coastDistanceFallback(p)
}

var coastBands = []struct {
	maxKm float64
	depth float64
}{
	{1, 2},
	{5, 8},
	{15, 25},
	{50, 120},
	{200, 500},
}

// coastDistanceFallback estimates depth from proximity to land when no
// patch covers the point: land itself is 0, otherwise depth increases in
// bands with distance to the nearest coastline, sampled radially.
func (o *Oracle) coastDistanceFallback(p domain.Coordinate) float64 {
	if o.land.IsLand(p) {
		return 0
	}
	for _, band := range coastBands {
		if o.anyLandWithinKm(p, band.maxKm) {
			return band.depth
		}
	}
	return 3000
}

func (o *Oracle) anyLandWithinKm(p domain.Coordinate, km float64) bool {
	const bearingsSampled = 16
	distanceNM := km / 1.852
	for i := 0; i < bearingsSampled; i++ {
		bearing := float64(i) * (360.0 / bearingsSampled)
		if o.land.IsLand(domain.Destination(p, distanceNM, bearing)) {
			return true
		}
	}
	return false
}

// IsDepthAdequate reports whether the depth at (lat, lon) clears the
// vessel's draft by safetyFactor.
func (o *Oracle) IsDepthAdequate(p domain.Coordinate, draft, safetyFactor float64) bool {
	if safetyFactor <= 0 {
		safetyFactor = 1.5
	}
	return o.Depth(p) >= draft*safetyFactor
}

// SegmentDepthResult reports the outcome of validating a segment's depth
// against a vessel's draft.
type SegmentDepthResult struct {
	Valid        bool
	MinDepth     float64
	InvalidCount int
}

// ValidateSegmentDepth samples the segment at samples+1 evenly spaced
// points via domain.SampleGreatCircle (linear in lat/lon below 5 degrees
// of separation, along the great circle beyond that) and reports whether
// every sample clears the required depth.
func (o *Oracle) ValidateSegmentDepth(p1, p2 domain.Coordinate, draft float64, samples int) SegmentDepthResult {
	if samples < 1 {
		samples = 10
	}
	result := SegmentDepthResult{Valid: true, MinDepth: math.MaxFloat64}
	for _, pt := range domain.SampleGreatCircle(p1, p2, samples) {
		d := o.Depth(pt)
		if d < result.MinDepth {
			result.MinDepth = d
		}
		if !o.IsDepthAdequate(pt, draft, 1.5) {
			result.InvalidCount++
			result.Valid = false
		}
	}
	return result
}

// BatchDepth resolves depth for every coordinate, parallelizing uncached
// lookups across a bounded worker pool capped by MAX_BATHY_CONCURRENCY
// (default 3) and an overall 15-second wall-clock deadline; any lookup
// still outstanding when the deadline fires falls back to a direct
// synchronous call so the result slice is always fully populated.
func (o *Oracle) BatchDepth(points []domain.Coordinate) []float64 {
	depths := make([]float64, len(points))
	if len(points) == 0 {
		return depths
	}

	concurrency := getEnvInt("MAX_BATHY_CONCURRENCY", 3)
	if concurrency > runtime.NumCPU() {
		concurrency = runtime.NumCPU()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool := pond.New(concurrency, 0, pond.MinWorkers(concurrency), pond.Context(ctx))

	var mu sync.Mutex
	done := make([]bool, len(points))
	for i, pt := range points {
		i, pt := i, pt
		pool.Submit(func() {
			d := o.Depth(pt)
			mu.Lock()
			depths[i] = d
			done[i] = true
			mu.Unlock()
		})
	}
	pool.StopAndWait()

	// Anything left unfinished when the deadline cancelled the pool is
	// resolved synchronously so callers always get a complete slice.
	mu.Lock()
	for i, pt := range points {
		if !done[i] {
			depths[i] = o.Depth(pt)
		}
	}
	mu.Unlock()

	return depths
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
