package controllers

import (
	"net/http"
	"strconv"

	"ndara/internal/apperr"
	"ndara/internal/services"

	"github.com/labstack/echo/v4"
)

// respond writes an action result. Failures carry the status of their kind.
func respond(c echo.Context, successCode int, res services.Result) error {
	if !res.Success {
		return c.JSON(apperr.HTTPStatus(res.Kind), res)
	}
	return c.JSON(successCode, res)
}

// bind decodes the JSON body into a fresh T. Schema checks happen in the
// action, never here.
func bind[T any](c echo.Context) (T, error) {
	var in T
	if err := (&echo.DefaultBinder{}).BindBody(c, &in); err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "corps de requête invalide")
	}
	return in, nil
}

// queryInt parses an optional integer query parameter
func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}

// list wraps a slice so empty results render as [] instead of null
func list[T any](items []T) map[string]interface{} {
	if items == nil {
		items = []T{}
	}
	return map[string]interface{}{"items": items, "count": len(items)}
}
