package api

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	apimiddleware "ndara/internal/api/middleware"
	"ndara/internal/apperr"
	"ndara/internal/config"
	"ndara/internal/handlers"
	"ndara/internal/models"
	"ndara/internal/permissions"
	"ndara/internal/services"
	"ndara/internal/store/gormstore"
	console "ndara/internal/utils/logger"
	"ndara/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Services  *services.Service
	Activator handlers.PaymentActivator
	Resolver  apimiddleware.PrincipalResolver
	Validator *validator.Validator
	// Storage is nil when no bucket is configured; uploads then answer 503.
	Storage handlers.AssetStorage
	// PublicKey verifies RS256 service tokens; nil accepts HS256 only.
	PublicKey *rsa.PublicKey
	// DB backs the admin panel; nil when the store is not Postgres.
	DB *gorm.DB
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	deps   Deps
	auth   *apimiddleware.AuthMiddleware
}

var log = console.New("API-Server")

// NewServer @title Ndara Afrique API
// @version 1.0
// @description Course authoring, enrollment and back-office actions of the Ndara Afrique platform.
// @host localhost:8080
// @BasePath /
func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true

	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	e.Validator = deps.Validator

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("10M"))
	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:   e,
		config: cfg,
		deps:   deps,
		auth:   apimiddleware.NewAuthMiddleware(cfg.JWT.Secret, deps.PublicKey, deps.Resolver),
	}

	if deps.DB != nil {
		if err := s.registerAdminPanel(deps.DB); err != nil {
			_ = log.Error("Failed to create admin panel", err)
		}
	}

	s.registerRoutes()
	return s
}

// registerAdminPanel mounts a read-only view of the documents table for
// principals holding admin.access.
func (s *Server) registerAdminPanel(db *gorm.DB) error {
	gormIntegrator := admingorm.NewIntegrator(db)
	echoIntegrator := adminecho.NewIntegrator(s.echo.Group("/admin-panel", s.auth.Middleware()))

	adminPanel, err := admin.NewPanel(gormIntegrator, echoIntegrator, adminPermissionChecker, nil)
	if err != nil {
		return err
	}
	app, err := adminPanel.RegisterApp("ndara", "Ndara Afrique", nil)
	if err != nil {
		return err
	}
	if _, err := app.RegisterModel(&gormstore.DocumentRecord{}, nil); err != nil {
		return err
	}
	log.Success("Admin panel mounted on /admin-panel")
	return nil
}

// adminPermissionChecker lets principals holding admin.access browse the
// panel. Writes must go through the audited actions.
func adminPermissionChecker(request admin.PermissionRequest, ctx interface{}) (bool, error) {
	c, ok := ctx.(echo.Context)
	if !ok {
		return false, nil
	}
	if err := permissions.Check(apimiddleware.GetActor(c).Principal, models.PermAdminAccess); err != nil {
		return false, nil
	}
	return isReadAction(request.Action), nil
}

// isReadAction reports whether action names a read. The panel hands over a
// pointer to its own string type, so the value is read through reflection.
func isReadAction(action interface{}) bool {
	v := reflect.ValueOf(action)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return false
	}
	switch v.String() {
	case "read", "log_view":
		return true
	}
	return false
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	var ae *apperr.Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		code = apperr.HTTPStatus(ae.Kind)
		if ae.Kind == apperr.KindValidation {
			message = ae.Fields
		} else {
			message = apperr.Render(ae)
		}
		if ae.Kind == apperr.KindInternal || ae.Kind == apperr.KindStoreWriteFailed {
			_ = log.Error("Request %s %s failed", err, c.Request().Method, c.Path())
		}
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
	default:
		_ = log.Error("Unhandled error on %s %s", err, c.Request().Method, c.Path())
		message = http.StatusText(code)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"success": false,
				"error":   message,
				"code":    code,
				"time":    time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
