package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// RequirementFunc derives the authorization requirement of a request.
type RequirementFunc func(c echo.Context) (domain.Requirement, error)

// Require returns a fixed requirement.
func Require(r domain.Requirement) RequirementFunc {
	return func(echo.Context) (domain.Requirement, error) {
		return r, nil
	}
}

// SelfOrSuperuserParam targets the account whose id is the path parameter
// param.
func SelfOrSuperuserParam(param string) RequirementFunc {
	return func(c echo.Context) (domain.Requirement, error) {
		id, err := ParseID(c, param)
		if err != nil {
			return domain.Requirement{}, err
		}
		return domain.SelfOrSuperuser(id), nil
	}
}

// ParseID reads a positive numeric path parameter.
func ParseID(c echo.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, param+" must be a positive integer")
	}
	return id, nil
}
