// Package main provides a one-shot CLI for planning a single voyage
// without standing up the HTTP server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ngs-io/voyage-router/internal/domain"
	"github.com/ngs-io/voyage-router/internal/usecase"
)

func main() {
	planner := flag.String("planner", "genetic", "planner to use: simple, astar, or genetic")
	startLat := flag.Float64("start-lat", 0, "start latitude")
	startLon := flag.Float64("start-lon", 0, "start longitude")
	endLat := flag.Float64("end-lat", 0, "end latitude")
	endLon := flag.Float64("end-lon", 0, "end longitude")
	weatherEnabled := flag.Bool("weather", false, "fetch live weather for each segment")
	avoidShallow := flag.Bool("avoid-shallow", true, "reject routes through water shallower than the vessel's draft margin")
	gridResolution := flag.Float64("grid-resolution", 0.5, "astar planner: lattice resolution in degrees")
	generations := flag.Int("generations", 15, "genetic planner: number of generations")
	population := flag.Int("population", 20, "genetic planner: population size")
	flag.Parse()

	start, err := domain.NewCoordinate(*startLat, *startLon)
	if err != nil {
		log.Fatalf("invalid start coordinate: %v", err)
	}
	end, err := domain.NewCoordinate(*endLat, *endLon)
	if err != nil {
		log.Fatalf("invalid end coordinate: %v", err)
	}

	uc := usecase.NewRoutingUseCase()
	req := usecase.RouteRequest{
		Start:             start,
		End:               end,
		WeatherEnabled:    *weatherEnabled,
		AvoidShallowWater: *avoidShallow,
	}

	var result domain.RouteResult
	switch *planner {
	case "simple":
		result, err = uc.RunSimple(req)
	case "astar":
		result, err = uc.RunAStar(usecase.AStarRequest{RouteRequest: req, GridResolution: *gridResolution})
	case "genetic":
		result, err = uc.RunGenetic(usecase.GeneticRequest{
			RouteRequest:   req,
			PopulationSize: *population,
			Generations:    *generations,
		})
	default:
		log.Fatalf("unknown planner %q (want simple, astar, or genetic)", *planner)
	}
	if err != nil {
		log.Fatalf("planning failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
}
