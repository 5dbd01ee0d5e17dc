package controllers

import (
	"net/http"

	"ndara/internal/api/middleware"
	"ndara/internal/services"
	"ndara/internal/validator"

	"github.com/labstack/echo/v4"
)

// AdminController serves the back-office actions: roles, security alerts,
// platform settings and the audit log.
type AdminController struct {
	svc *services.Service
}

func NewAdminController(svc *services.Service) *AdminController {
	return &AdminController{svc: svc}
}

func (ac *AdminController) ListRoles(c echo.Context) error {
	roles, err := ac.svc.ListRoles(c.Request().Context(), middleware.GetActor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(roles))
}

func (ac *AdminController) UpdateRolePermissions(c echo.Context) error {
	in, err := bind[validator.RolePermissionPatch](c)
	if err != nil {
		return err
	}
	res := ac.svc.UpdateRolePermissions(c.Request().Context(), middleware.GetActor(c), c.Param("roleId"), in)
	return respond(c, http.StatusOK, res)
}

func (ac *AdminController) OpenAlerts(c echo.Context) error {
	alerts, err := ac.svc.OpenAlerts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(alerts))
}

func (ac *AdminController) ResolveAlert(c echo.Context) error {
	res := ac.svc.ResolveSecurityAlert(c.Request().Context(), middleware.GetActor(c), c.Param("alertId"))
	return respond(c, http.StatusOK, res)
}

func (ac *AdminController) GetSettings(c echo.Context) error {
	settings, err := ac.svc.GetSettings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (ac *AdminController) UpdateSettings(c echo.Context) error {
	in, err := bind[validator.SettingsInput](c)
	if err != nil {
		return err
	}
	res := ac.svc.UpdateSettings(c.Request().Context(), middleware.GetActor(c), in)
	return respond(c, http.StatusOK, res)
}

// AuditLog returns the latest entries, ?limit= up to 500
func (ac *AdminController) AuditLog(c echo.Context) error {
	entries, err := ac.svc.AuditLog(c.Request().Context(), middleware.GetActor(c), queryInt(c, "limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(entries))
}
