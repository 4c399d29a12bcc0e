package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ngs-io/voyage-router/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(routingUC *usecase.RoutingUseCase) *gin.Engine {
	router := gin.Default()

	handler := NewHandler(routingUC)

	v1 := router.Group("/v1")
	{
		route := v1.Group("/route")
		{
			route.GET("/simple", handler.RunSimple)
			route.GET("/astar", handler.RunAStar)
			route.GET("/genetic", handler.RunGenetic)
			route.GET("/compare", handler.Compare)
		}

		v1.GET("/ports", handler.ListPorts)
		v1.GET("/zones", handler.ListBlockedZones)
	}

	router.GET("/healthz", handler.HealthCheck)

	return router
}
