package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ngs-io/voyage-router/internal/domain"
	"github.com/ngs-io/voyage-router/internal/usecase"
)

// Handler handles HTTP requests for the routing engine.
type Handler struct {
	routingUC *usecase.RoutingUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(routingUC *usecase.RoutingUseCase) *Handler {
	return &Handler{
		routingUC: routingUC,
	}
}

func parseCoordinate(c *gin.Context, latParam, lonParam string) (domain.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query(latParam), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid %s: %w", latParam, err)
	}
	lon, err := strconv.ParseFloat(c.Query(lonParam), 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("invalid %s: %w", lonParam, err)
	}
	return domain.NewCoordinate(lat, lon)
}

func vesselFromQuery(c *gin.Context) *domain.Vessel {
	if c.Query("dwt") == "" {
		return nil
	}
	v := usecase.DefaultVessel()
	if dwt, err := strconv.ParseFloat(c.Query("dwt"), 64); err == nil {
		v.DWT = dwt
	}
	if length, err := strconv.ParseFloat(c.Query("length"), 64); err == nil {
		v.Length = length
	}
	if beam, err := strconv.ParseFloat(c.Query("beam"), 64); err == nil {
		v.Beam = beam
	}
	if draft, err := strconv.ParseFloat(c.Query("draft"), 64); err == nil {
		v.Draft = draft
	}
	if speed, err := strconv.ParseFloat(c.Query("serviceSpeed"), 64); err == nil {
		v.ServiceSpeed = speed
	}
	if fuelType := c.Query("fuelType"); fuelType != "" {
		v.FuelType = domain.FuelType(fuelType)
	}
	return &v
}

func boolQuery(c *gin.Context, key string) bool {
	v := c.Query(key)
	return v == "1" || v == "true"
}

func floatQueryDefault(c *gin.Context, key string, fallback float64) float64 {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func intQueryDefault(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// routeRequestFromQuery parses the fields common to all three planners:
// start/end coordinates, an optional vessel profile, and the
// weather/shallow-water toggles.
func (h *Handler) routeRequestFromQuery(c *gin.Context) (usecase.RouteRequest, error) {
	start, err := parseCoordinate(c, "startLat", "startLon")
	if err != nil {
		return usecase.RouteRequest{}, err
	}
	end, err := parseCoordinate(c, "endLat", "endLon")
	if err != nil {
		return usecase.RouteRequest{}, err
	}
	return usecase.RouteRequest{
		Start:             start,
		End:               end,
		Vessel:            vesselFromQuery(c),
		WeatherEnabled:    boolQuery(c, "weatherEnabled"),
		AvoidShallowWater: boolQuery(c, "avoidShallowWater"),
		MinDepth:          floatQueryDefault(c, "minDepth", 0),
	}, nil
}

// RunSimple handles GET /v1/route/simple.
func (h *Handler) RunSimple(c *gin.Context) {
	req, err := h.routeRequestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.routingUC.RunSimple(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunAStar handles GET /v1/route/astar.
func (h *Handler) RunAStar(c *gin.Context) {
	base, err := h.routeRequestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := usecase.AStarRequest{
		RouteRequest:      base,
		GridResolution:    floatQueryDefault(c, "gridResolution", 0.5),
		AvoidBlockedZones: boolQuery(c, "avoidBlockedZones"),
	}

	result, err := h.routingUC.RunAStar(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunGenetic handles GET /v1/route/genetic.
func (h *Handler) RunGenetic(c *gin.Context) {
	base, err := h.routeRequestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := usecase.GeneticRequest{
		RouteRequest:      base,
		PopulationSize:    intQueryDefault(c, "populationSize", 20),
		Generations:       intQueryDefault(c, "generations", 15),
		MutationRate:      floatQueryDefault(c, "mutationRate", 0.1),
		CrossoverRate:     floatQueryDefault(c, "crossoverRate", 0.8),
		EliteCount:        intQueryDefault(c, "eliteCount", 2),
		NumWaypoints:      intQueryDefault(c, "numWaypoints", 5),
		AvoidBlockedZones: boolQuery(c, "avoidBlockedZones"),
	}

	result, err := h.routingUC.RunGenetic(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Compare handles GET /v1/route/compare.
func (h *Handler) Compare(c *gin.Context) {
	req, err := h.routeRequestFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.routingUC.Compare(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPorts handles GET /v1/ports. A non-empty q parameter switches to a
// substring search against the catalog.
func (h *Handler) ListPorts(c *gin.Context) {
	limit := intQueryDefault(c, "limit", 0)
	if query := c.Query("q"); query != "" {
		c.JSON(http.StatusOK, gin.H{"ports": h.routingUC.SearchPorts(query, limit)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ports": h.routingUC.ListPorts(limit)})
}

// ListBlockedZones handles GET /v1/zones, a diagnostic listing of the
// exclusion discs currently in effect.
func (h *Handler) ListBlockedZones(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"zones": h.routingUC.ListBlockedZones()})
}

// HealthCheck handles GET /healthz.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
