package server

import (
	"github.com/labstack/echo/v4"

	"github.com/vendange/backend/internal/server/middleware"
	"github.com/vendange/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api/search", middleware.AuthMiddleware)

	// Index build routes
	apiRoutes.POST("/index", routes.CreateIndexHandler, middleware.RequirePermission("index.create"))
	apiRoutes.GET("/index/:id", routes.GetIndexHandler, middleware.RequirePermission("index.view"))
	apiRoutes.DELETE("/index/:id", routes.DeleteIndexHandler, middleware.RequirePermission("index.delete"))

	// Query routes
	apiRoutes.POST("/query", routes.QueryLatestHandler, middleware.RequirePermission("query.run"))
	apiRoutes.POST("/index/:id/query", routes.QueryIndexHandler, middleware.RequirePermission("query.run"))
}
