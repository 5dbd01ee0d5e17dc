package middleware

import (
	"ndara/internal/models"
	"ndara/internal/permissions"

	"github.com/labstack/echo/v4"
)

// RequirePermissions rejects the request unless the actor holds every
// permission. Admins hold them all.
func RequirePermissions(required ...models.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := GetActor(c)
			for _, perm := range required {
				if err := permissions.Check(actor.Principal, perm); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireAnyPermission passes when the actor holds at least one permission
func RequireAnyPermission(anyOf ...models.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(anyOf) == 0 {
				return next(c)
			}
			actor := GetActor(c)
			var err error
			for _, perm := range anyOf {
				if err = permissions.Check(actor.Principal, perm); err == nil {
					return next(c)
				}
			}
			return err
		}
	}
}
