package weather

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ngs-io/voyage-router/internal/domain"
)

func TestFetchCombined_NoProvidersFallsBackToNeutral(t *testing.T) {
	p := New("", "")
	sample := p.FetchCombined(36.0, 15.0, time.Now())

	neutral := domain.NeutralWeather()
	if sample.Source != "fallback" {
		t.Errorf("expected source=fallback, got %q", sample.Source)
	}
	if sample.WindSpeedMS != neutral.WindSpeedMS {
		t.Errorf("expected neutral wind speed %v, got %v", neutral.WindSpeedMS, sample.WindSpeedMS)
	}
	if sample.WaveHeightM != neutral.WaveHeightM {
		t.Errorf("expected neutral wave height %v, got %v", neutral.WaveHeightM, sample.WaveHeightM)
	}
	if sample.Lat != 36.0 || sample.Lon != 15.0 {
		t.Errorf("expected lat/lon to be stamped onto the sample, got %+v", sample)
	}
}

func TestFetchCombined_MergesLiveAtmoWithNeutralMarine(t *testing.T) {
	atmo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]float64{
			"windSpeedMs":      12.5,
			"windDirectionDeg": 270,
			"airTempC":         22,
			"pressureHpa":      1005,
		})
	}))
	defer atmo.Close()

	p := New(atmo.URL, "")
	sample := p.FetchCombined(36.0, 15.0, time.Now())

	// The marine provider is unconfigured, so the sample is still a
	// fallback overall even though the atmospheric fields are live: wave
	// and current data (the resistance model's marine inputs) are
	// neutral defaults, not observations.
	if sample.Source != "fallback" {
		t.Errorf("expected source=fallback when the marine provider has no live data, got %q", sample.Source)
	}
	if sample.WindSpeedMS != 12.5 {
		t.Errorf("expected live wind speed 12.5, got %v", sample.WindSpeedMS)
	}
	neutral := domain.NeutralWeather()
	if sample.WaveHeightM != neutral.WaveHeightM {
		t.Errorf("expected marine fields to fall back to neutral, got wave height %v", sample.WaveHeightM)
	}
}

func TestFetchCombined_BothProvidersFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	p := New(failing.URL, failing.URL)
	sample := p.FetchCombined(0, 0, time.Now())
	if sample.Source != "fallback" {
		t.Errorf("expected source=fallback when both providers fail, got %q", sample.Source)
	}
}

func TestFetchWeatherAlongRoute_SamplesEveryPoint(t *testing.T) {
	p := New("", "")
	start := domain.Coordinate{Lat: 36.0, Lon: 15.0}
	end := domain.Coordinate{Lat: 37.0, Lon: 16.0}

	samples := p.FetchWeatherAlongRoute(start, end, 1, time.Now())
	if len(samples) == 0 {
		t.Fatal("expected at least one weather sample")
	}
	for i, s := range samples {
		if s.Source != "fallback" {
			t.Errorf("sample %d: expected fallback source with no providers configured, got %q", i, s.Source)
		}
	}
}
