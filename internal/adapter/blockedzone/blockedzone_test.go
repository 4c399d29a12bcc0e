package blockedzone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ngs-io/voyage-router/internal/domain"
)

func TestDiscsFromFile_MissingFile(t *testing.T) {
	if discs := discsFromFile(filepath.Join(t.TempDir(), "missing.json")); discs != nil {
		t.Errorf("expected nil discs for a missing file, got %v", discs)
	}
}

func TestDiscsFromFile_ParsesKmToNM(t *testing.T) {
	content := `{"zones":[{"name":"test-zone","description":"d","points":[{"lat":10,"lon":20,"radius":18.52}]}]}`
	path := filepath.Join(t.TempDir(), "zones.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	discs := discsFromFile(path)
	if len(discs) != 1 {
		t.Fatalf("expected 1 disc, got %d", len(discs))
	}
	// 18.52 km / 1.852 km-per-NM = 10 NM.
	if got := discs[0].RadiusNM; got < 9.99 || got > 10.01 {
		t.Errorf("expected radius ~10 NM, got %v", got)
	}
}

// TestSingleton_LoadsFixtureZones exercises the package-level singleton,
// which loads once per test binary: set BLOCKED_ZONES_PATH before the
// first call into the package so it picks up this fixture.
func TestSingleton_LoadsFixtureZones(t *testing.T) {
	content := `{"zones":[{"name":"exclusion","description":"d","points":[{"lat":36.0,"lon":15.0,"radius":50}]}]}`
	path := filepath.Join(t.TempDir(), "zones.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("BLOCKED_ZONES_PATH", path)

	inside := domain.Coordinate{Lat: 36.1, Lon: 15.1}
	outside := domain.Coordinate{Lat: 0, Lon: 0}

	if !IsInBlockedZone(inside) {
		t.Error("expected point near the zone center to be blocked")
	}
	if IsInBlockedZone(outside) {
		t.Error("expected a far-away point to not be blocked")
	}

	if !SegmentCrossesBlockedZone(domain.Coordinate{Lat: 35.9, Lon: 14.9}, inside) {
		t.Error("expected a segment ending inside the zone to cross it")
	}
	if SegmentCrossesBlockedZone(domain.Coordinate{Lat: -10, Lon: -10}, outside) {
		t.Error("expected a segment far from the zone to not cross it")
	}

	zones := Discs()
	if len(zones) != 1 {
		t.Fatalf("expected Discs() to return the fixture's single zone, got %d", len(zones))
	}
	if zones[0].Lat != 36.0 || zones[0].Lon != 15.0 {
		t.Errorf("expected the fixture zone's center, got %+v", zones[0])
	}
}
