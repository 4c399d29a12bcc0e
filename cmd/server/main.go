// Package main provides the voyage routing API HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	httpHandler "github.com/ngs-io/voyage-router/internal/http"
	"github.com/ngs-io/voyage-router/internal/usecase"
)

const version = "0.1.0"

func main() {
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("voyage-router version %s\n", version)
		return
	}

	port := getEnv("PORT", "8080")
	dataDir := getEnv("DATA_DIR", "./data")

	log.Printf("Starting voyage router server...")
	log.Printf("Port: %s", port)
	log.Printf("Data directory: %s", dataDir)

	routingUC := usecase.NewRoutingUseCase()
	router := httpHandler.SetupRouter(routingUC)

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/healthz", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/route/simple")
	log.Printf("  - GET /v1/route/astar")
	log.Printf("  - GET /v1/route/genetic")
	log.Printf("  - GET /v1/route/compare")
	log.Printf("  - GET /v1/ports")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func printUsage() {
	fmt.Printf("Voyage Router Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  voyage-router [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                      Server port (default: 8080)")
	fmt.Println("  DATA_DIR                  Data directory shown in the startup log (default: ./data);")
	fmt.Println("                            datasets are located by the *_PATH variables below")
	fmt.Println("  LAND_GRID_PATH            Land raster grid JSON path")
	fmt.Println("  LAND_POLYGONS_PATH        Coastline GeoJSON path")
	fmt.Println("  BATHYMETRY_PATH           Bathymetry patch dataset JSON path")
	fmt.Println("  MAX_BATHY_CONCURRENCY     Bathymetry batch lookup concurrency (default: 3)")
	fmt.Println("  OCEAN_MASK_PATH           Binary ocean mask raster JSON path")
	fmt.Println("  BLOCKED_ZONES_PATH        Blocked zone dataset JSON path")
	fmt.Println("  PORT_CATALOG_PATH         Port catalog JSON path")
	fmt.Println("  ATMO_WEATHER_API_BASE     Atmospheric weather HTTP API base")
	fmt.Println("  MARINE_WEATHER_API_BASE   Marine weather HTTP API base")
	fmt.Println("  ASTAR_MAX_ITERATIONS      A* iteration cap (default: 200000)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  voyage-router")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 voyage-router")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /healthz                   Health check")
	fmt.Println("  GET /v1/route/simple            Ocean-mask A* route")
	fmt.Println("  GET /v1/route/astar             Fuel-cost lattice A* route")
	fmt.Println("  GET /v1/route/genetic           Genetic-algorithm optimized route")
	fmt.Println("  GET /v1/route/compare           Simple vs genetic comparison")
	fmt.Println("  GET /v1/ports                   Port catalog lookup")
	fmt.Println()
}
