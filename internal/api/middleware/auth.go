// Package middleware holds the echo middleware that puts the access guard in
// front of protected routes.
package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// IdentityKey is the echo context key holding the *domain.Identity produced
// by the guard.
const IdentityKey = "identity"

// Auth runs the access guard for every request using the requirement derived
// by req. On success the resolved identity is stored under IdentityKey; on
// failure the guard error is returned for the central error handler. When req
// cannot derive a requirement the caller must still authenticate before the
// derivation error is reported.
func Auth(guard ports.AccessGuard, m *metrics.Metrics, req RequirementFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requirement, reqErr := req(c)
			if reqErr != nil {
				requirement = domain.AnyAuthenticated()
			}

			id, err := authorize(c, guard, m, requirement)
			if err != nil {
				return err
			}
			if reqErr != nil {
				return reqErr
			}

			if id != nil {
				c.Set(IdentityKey, id)
			}
			return next(c)
		}
	}
}

func authorize(c echo.Context, guard ports.AccessGuard, m *metrics.Metrics, requirement domain.Requirement) (*domain.Identity, error) {
	token, err := BearerToken(c)
	if err != nil && requirement.Level != domain.AccessPublic {
		m.ObserveDenied("unauthenticated", requirement.Level.String())
		return nil, err
	}

	id, err := guard.Authorize(c.Request().Context(), token, requirement)
	if err != nil {
		m.ObserveDenied(denyReason(err), requirement.Level.String())
		return nil, err
	}
	return id, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrUnauthenticated
	}
	return strings.TrimSpace(parts[1]), nil
}

func denyReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "inactive"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
