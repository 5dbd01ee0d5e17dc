package middleware

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"ndara/internal/mutation"
	"ndara/internal/permissions"
	"ndara/internal/services"
	"ndara/internal/utils"
	"ndara/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

const actorKey = "actor"

// PrincipalResolver turns verified identity claims into a principal
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID, roleID string) (permissions.Principal, error)
}

type AuthMiddleware struct {
	jwtSecret string
	publicKey *rsa.PublicKey
	resolver  PrincipalResolver
}

// NewAuthMiddleware accepts HS256 tokens signed with jwtSecret and RS256
// tokens signed by the key pair behind publicKey. Either may be unset.
func NewAuthMiddleware(jwtSecret string, publicKey *rsa.PublicKey, resolver PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		publicKey: publicKey,
		resolver:  resolver,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			return m.validateJWT(c, tokenParts[1], next)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string, next echo.HandlerFunc) error {
	claims, err := utils.ParseJWT(tokenString, m.jwtSecret, m.publicKey)
	if err != nil {
		log.Warn("Rejected token: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	principal, err := m.resolver.Resolve(c.Request().Context(), claims.UserID, claims.Role)
	if err != nil {
		return mutation.Classify(err)
	}

	SetActor(c, services.Actor{
		Principal: principal,
		IPAddress: utils.GetIPAddress(c.Request()),
	})

	return next(c)
}

// GetActor returns the principal stored by the auth middleware. Requests
// that skipped it get an anonymous actor that every check denies.
func GetActor(c echo.Context) services.Actor {
	if actor, ok := c.Get(actorKey).(services.Actor); ok {
		return actor
	}
	return services.Actor{IPAddress: utils.GetIPAddress(c.Request())}
}

// SetActor installs actor on c.
func SetActor(c echo.Context, actor services.Actor) {
	c.Set(actorKey, actor)
}
