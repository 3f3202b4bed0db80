package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

func TestSelfOrSuperuserParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("5")

	req, err := SelfOrSuperuserParam("id")(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Level != domain.AccessSelfOrSuperuser || req.TargetID != 5 {
		t.Fatalf("unexpected requirement: %+v", req)
	}
}

func TestSelfOrSuperuserParam_Invalid(t *testing.T) {
	e := echo.New()
	for _, v := range []string{"abc", "0", "-3", ""} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(v)

		_, err := SelfOrSuperuserParam("id")(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnprocessableEntity {
			t.Fatalf("value %q: expected 422, got %v", v, err)
		}
	}
}

func TestAuthMiddleware_SelfOrSuperuserFromPath(t *testing.T) {
	var seen domain.Requirement
	guard := &stubGuard{authorizeFn: func(_ context.Context, _ string, req domain.Requirement) (*domain.Identity, error) {
		seen = req
		return &domain.Identity{ID: 9}, nil
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
	req.Header.Set("Authorization", "Bearer tok")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("9")

	handler := Auth(guard, nil, SelfOrSuperuserParam("id"))(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if seen != domain.SelfOrSuperuser(9) {
		t.Fatalf("guard saw %+v", seen)
	}
}
