// Package weather fetches best-effort atmospheric and marine conditions
// from two external HTTP providers, falling back to neutral values on
// any failure so routing never blocks on network trouble.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/alitto/pond"

	"github.com/ngs-io/voyage-router/internal/domain"
)

const requestTimeout = 10 * time.Second

// Provider fetches combined weather for a point, falling back to
// NeutralWeather on any failure. The zero value is usable; HTTP clients
// and base URLs are resolved lazily from environment variables.
type Provider struct {
	client *http.Client

	once       sync.Once
	atmoBase   string
	marineBase string
}

var (
	defaultProvider     *Provider
	defaultProviderOnce sync.Once
)

// Default returns the process-wide weather provider.
func Default() *Provider {
	defaultProviderOnce.Do(func() {
		defaultProvider = &Provider{client: &http.Client{}}
	})
	return defaultProvider
}

// New builds a Provider pinned to explicit atmospheric/marine base URLs,
// bypassing the environment-driven singleton. Tests point these at an
// httptest.Server; an empty base disables that provider, same as an
// unset env var.
func New(atmoBase, marineBase string) *Provider {
	p := &Provider{client: &http.Client{}, atmoBase: atmoBase, marineBase: marineBase}
	p.once.Do(func() {})
	return p
}

func (p *Provider) ensureConfigured() {
	p.once.Do(func() {
		if p.client == nil {
			p.client = &http.Client{}
		}
		p.atmoBase = getEnv("ATMO_WEATHER_API_BASE", "")
		p.marineBase = getEnv("MARINE_WEATHER_API_BASE", "")
	})
}

type atmoResponse struct {
	WindSpeedMS      *float64 `json:"windSpeedMs"`
	WindDirectionDeg *float64 `json:"windDirectionDeg"`
	AirTempC         *float64 `json:"airTempC"`
	PressureHPa      *float64 `json:"pressureHpa"`
}

type marineResponse struct {
	WaveHeightM      *float64 `json:"waveHeightM"`
	WavePeriodS      *float64 `json:"wavePeriodS"`
	WaveDirectionDeg *float64 `json:"waveDirectionDeg"`
	CurrentSpeedMS   *float64 `json:"currentSpeedMs"`
	CurrentDirDeg    *float64 `json:"currentDirDeg"`
	SeaTempC         *float64 `json:"seaTempC"`
}

func (p *Provider) fetchAtmo(ctx context.Context, lat, lon float64, at time.Time) (*atmoResponse, error) {
	if p.atmoBase == "" {
		return nil, fmt.Errorf("no atmospheric provider configured")
	}
	url := fmt.Sprintf("%s?lat=%f&lon=%f&time=%d", p.atmoBase, lat, lon, at.Unix())
	var out atmoResponse
	if err := p.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Provider) fetchMarine(ctx context.Context, lat, lon float64, at time.Time) (*marineResponse, error) {
	if p.marineBase == "" {
		return nil, fmt.Errorf("no marine provider configured")
	}
	url := fmt.Sprintf("%s?lat=%f&lon=%f&time=%d", p.marineBase, lat, lon, at.Unix())
	var out marineResponse
	if err := p.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Provider) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchCombined requests the atmospheric and marine providers
// concurrently and merges whichever succeed into one sample. A provider
// failure fills only its own fields with neutral defaults; if both fail,
// the entire sample is the neutral fallback.
func (p *Provider) FetchCombined(lat, lon float64, at time.Time) domain.WeatherSample {
	p.ensureConfigured()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var atmo *atmoResponse
	var marine *marineResponse
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if r, err := p.fetchAtmo(ctx, lat, lon, at); err == nil {
			atmo = r
		}
	}()
	go func() {
		defer wg.Done()
		if r, err := p.fetchMarine(ctx, lat, lon, at); err == nil {
			marine = r
		}
	}()
	wg.Wait()

	sample := domain.NeutralWeather()
	sample.Lat = lat
	sample.Lon = lon
	sample.TimestampUnix = at.Unix()

	if atmo != nil {
		setIfPresent(&sample.WindSpeedMS, atmo.WindSpeedMS)
		setIfPresent(&sample.WindDirectionDeg, atmo.WindDirectionDeg)
		setIfPresent(&sample.AirTempC, atmo.AirTempC)
		setIfPresent(&sample.PressureHPa, atmo.PressureHPa)
	}

	// Source reflects the marine fields specifically: wave/current data
	// drives the resistance model, so a sample only counts as "live" when
	// it actually came from the marine provider, even if the atmospheric
	// provider also succeeded.
	if marine != nil {
		setIfPresent(&sample.WaveHeightM, marine.WaveHeightM)
		setIfPresent(&sample.WavePeriodS, marine.WavePeriodS)
		setIfPresent(&sample.WaveDirectionDeg, marine.WaveDirectionDeg)
		setIfPresent(&sample.CurrentSpeedMS, marine.CurrentSpeedMS)
		setIfPresent(&sample.CurrentDirDeg, marine.CurrentDirDeg)
		setIfPresent(&sample.SeaTempC, marine.SeaTempC)
		sample.Source = "live"
	} else {
		sample.Source = "fallback"
	}
	return sample
}

func setIfPresent(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// FetchWeatherAlongRoute samples weather roughly every resDeg degrees of
// angular distance between start and end, at points placed by
// domain.SampleGreatCircle (linear in lat/lon below 5 degrees of
// separation, along the great circle beyond that), fetching each sample concurrently
// on a worker pool bounded the same way as the bathymetry batch path.
func (p *Provider) FetchWeatherAlongRoute(start, end domain.Coordinate, resDeg float64, at time.Time) []domain.WeatherSample {
	if resDeg <= 0 {
		resDeg = 1
	}
	span := domain.GreatCircleDistance(start, end) / domain.EarthRadiusNM * (180.0 / 3.141592653589793)
	steps := int(span/resDeg) + 1
	if steps < 1 {
		steps = 1
	}

	points := domain.SampleGreatCircle(start, end, steps)
	samples := make([]domain.WeatherSample, len(points))

	concurrency := getEnvInt("MAX_BATHY_CONCURRENCY", 3)
	if concurrency > runtime.NumCPU() {
		concurrency = runtime.NumCPU()
	}
	if concurrency < 1 {
		concurrency = 1
	}

	pool := pond.New(concurrency, 0, pond.MinWorkers(concurrency))
	defer pool.StopAndWait()

	var mu sync.Mutex
	for i, pt := range points {
		i, pt := i, pt
		pool.Submit(func() {
			s := p.FetchCombined(pt.Lat, pt.Lon, at)
			mu.Lock()
			samples[i] = s
			mu.Unlock()
		})
	}

	return samples
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
