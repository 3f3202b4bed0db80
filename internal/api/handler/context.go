package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/middleware"
	"github.com/99minutos/accounts-service/internal/core/domain"
)

// callerIdentity returns the identity the Auth middleware resolved. Its
// absence means the route was mounted without the guard, which is treated
// as unauthenticated rather than trusted.
func callerIdentity(c echo.Context) (*domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(*domain.Identity)
	if !ok || id == nil {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}
