// Package portcatalog serves the static list of named ports used for
// lookups and search in the ambient HTTP binding.
package portcatalog

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/ngs-io/voyage-router/internal/domain"
)

type portEntry struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Code    string  `json:"code"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

var (
	catalogOnce  sync.Once
	catalogTable []domain.Port
)

func loadCatalog() {
	path := os.Getenv("PORT_CATALOG_PATH")
	if path == "" {
		path = "data/ports.json"
	}
	catalogTable = portsFromFile(path)
}

func portsFromFile(path string) []domain.Port {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var entries []portEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil
	}
	out := make([]domain.Port, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.Port{
			Name:       e.Name,
			Country:    e.Country,
			UNLOCODE:   e.Code,
			Coordinate: domain.Coordinate{Lat: e.Lat, Lon: e.Lon},
		})
	}
	return out
}

// ListPorts returns up to limit ports from the catalog, in file order.
// limit <= 0 returns the whole catalog.
func ListPorts(limit int) []domain.Port {
	catalogOnce.Do(loadCatalog)
	if limit <= 0 || limit >= len(catalogTable) {
		return catalogTable
	}
	return catalogTable[:limit]
}

// SearchPorts returns up to limit ports whose name, country, or
// UN/LOCODE contains query, case-insensitively.
func SearchPorts(query string, limit int) []domain.Port {
	catalogOnce.Do(loadCatalog)
	query = strings.ToLower(query)
	var out []domain.Port
	for _, p := range catalogTable {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Country), query) ||
			strings.Contains(strings.ToLower(p.UNLOCODE), query) {
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
