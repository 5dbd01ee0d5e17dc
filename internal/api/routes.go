package api

import (
	"net/http"

	"ndara/internal/api/registry"
	"ndara/internal/routes"

	_ "ndara/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Ndara Afrique API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Payment provider callbacks authenticate with a signature, not a token
	routes.SetupWebhookRoutes(s.echo, s.deps.Activator, s.deps.Services, s.config.Payments)

	// API v1 group
	api := s.echo.Group("/api/v1")
	api.Use(s.auth.Middleware())

	registry.RegisterActionRoutes(api, s.deps.Services)
	routes.SetupUploadRoutes(api, s.deps.Storage, s.deps.Services)
}
