// Package blockedzone answers whether a coordinate or segment falls
// inside an operator-declared exclusion disc (closed military areas,
// temporary hazards, piracy-risk zones).
package blockedzone

import (
	"encoding/json"
	"math"
	"os"
	"sync"

	"github.com/ngs-io/voyage-router/internal/domain"
)

// Disc is one exclusion circle belonging to a zone: radius is given in
// kilometers in the dataset file and converted to nautical miles at load
// time so IsInBlockedZone can compare directly against
// domain.GreatCircleDistance. Exported so callers (e.g. a diagnostic
// listing endpoint) can read back the loaded zones via Discs.
type Disc struct {
	Lat      float64
	Lon      float64
	RadiusNM float64
}

type zoneFilePoint struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"` // km
}

type zoneFileEntry struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Points      []zoneFilePoint `json:"points"`
}

type zoneFile struct {
	Zones []zoneFileEntry `json:"zones"`
}

var (
	zonesOnce  sync.Once
	zonesTable []Disc
)

const kmPerNM = 1.852

func loadZones() {
	path := os.Getenv("BLOCKED_ZONES_PATH")
	if path == "" {
		path = "data/blocked_zones.json"
	}
	zonesTable = discsFromFile(path)
}

func discsFromFile(path string) []Disc {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var zf zoneFile
	if err := json.Unmarshal(b, &zf); err != nil {
		return nil
	}
	var out []Disc
	for _, zone := range zf.Zones {
		for _, pt := range zone.Points {
			out = append(out, Disc{Lat: pt.Lat, Lon: pt.Lon, RadiusNM: pt.Radius / kmPerNM})
		}
	}
	return out
}

// IsInBlockedZone reports whether p lies within any declared exclusion
// disc. Zone data loads lazily and once; a missing or malformed file
// simply yields no zones.
func IsInBlockedZone(p domain.Coordinate) bool {
	zonesOnce.Do(loadZones)
	for _, z := range zonesTable {
		if haversineNM(p.Lat, p.Lon, z.Lat, z.Lon) <= z.RadiusNM {
			return true
		}
	}
	return false
}

// Discs returns the loaded exclusion discs, for diagnostic display.
func Discs() []Disc {
	zonesOnce.Do(loadZones)
	return zonesTable
}

// SegmentCrossesBlockedZone tests both endpoints of p1-p2 plus samples
// along the great-circle path at roughly 10km intervals (at least 5
// samples).
func SegmentCrossesBlockedZone(p1, p2 domain.Coordinate) bool {
	if IsInBlockedZone(p1) || IsInBlockedZone(p2) {
		return true
	}

	distanceKm := domain.GreatCircleDistance(p1, p2) * kmPerNM
	samples := int(math.Ceil(distanceKm / 10))
	if samples < 5 {
		samples = 5
	}

	for _, pt := range domain.SampleGreatCircle(p1, p2, samples) {
		if IsInBlockedZone(pt) {
			return true
		}
	}
	return false
}

func haversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := domain.Coordinate{Lat: lat1, Lon: lon1}
	p2 := domain.Coordinate{Lat: lat2, Lon: lon2}
	return domain.GreatCircleDistance(p1, p2)
}
