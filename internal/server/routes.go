package server

import (
	"github.com/labstack/echo/v4"

	"github.com/volgapavel/parsAZ/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Person routes
	apiRoutes.GET("/persons", routes.FindPersonsHandler)
	apiRoutes.GET("/persons/top", routes.GetTopPersonsHandler)
	apiRoutes.GET("/persons/:key", routes.GetPersonHandler)
	apiRoutes.GET("/persons/:key/neighbors", routes.GetNeighborsHandler)
	apiRoutes.GET("/persons/:key/relations", routes.GetRelationsHandler)

	// Index routes
	apiRoutes.GET("/stats", routes.GetStatsHandler)
	apiRoutes.POST("/index/rebuild", routes.RebuildIndexHandler)
	apiRoutes.POST("/index/reload", routes.ReloadIndexHandler)

	// Corpus routes
	apiRoutes.GET("/articles/count", routes.GetArticleCountHandler)
}
