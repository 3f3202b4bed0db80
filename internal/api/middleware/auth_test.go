package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/service"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/memory"
	"github.com/99minutos/accounts-service/internal/infrastructure/security"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type stubGuard struct {
	authorizeFn func(ctx context.Context, token string, req domain.Requirement) (*domain.Identity, error)
}

func (g *stubGuard) Authorize(ctx context.Context, token string, req domain.Requirement) (*domain.Identity, error) {
	return g.authorizeFn(ctx, token, req)
}

func newContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	repo := memory.NewAccountRepository()
	alice, _ := repo.Create(context.Background(), &domain.Account{Email: "a@x.com", Username: "alice", IsActive: true})
	issuer := security.NewJWTIssuer(testSecret, nil)
	guard := service.NewAccessGuard(repo, issuer)

	token, err := issuer.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, rec := newContext("Bearer " + token)

	called := false
	handler := Auth(guard, nil, Require(domain.AnyAuthenticated()))(func(c echo.Context) error {
		called = true
		id, ok := c.Get(IdentityKey).(*domain.Identity)
		if !ok || id.ID != alice.ID || id.Username != "alice" {
			t.Fatalf("identity not set: %+v", c.Get(IdentityKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	c, _ := newContext("")
	guard := &stubGuard{authorizeFn: func(context.Context, string, domain.Requirement) (*domain.Identity, error) {
		t.Fatalf("guard should not be called")
		return nil, nil
	}}

	handler := Auth(guard, nil, Require(domain.AnyAuthenticated()))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	for _, h := range []string{"Token abc", "Bearer", "Bearer   ", "abc"} {
		c, _ := newContext(h)
		if _, err := BearerToken(c); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("header %q: expected ErrUnauthenticated, got %v", h, err)
		}
	}

	c, _ := newContext("bearer xyz")
	tok, err := BearerToken(c)
	if err != nil || tok != "xyz" {
		t.Fatalf("expected case-insensitive scheme, got %q %v", tok, err)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	guard := service.NewAccessGuard(memory.NewAccountRepository(), security.NewJWTIssuer(testSecret, nil))
	c, _ := newContext("Bearer not-a-token")

	handler := Auth(guard, nil, Require(domain.AnyAuthenticated()))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_PublicWithoutToken(t *testing.T) {
	guard := service.NewAccessGuard(memory.NewAccountRepository(), security.NewJWTIssuer(testSecret, nil))
	c, rec := newContext("")

	handler := Auth(guard, nil, Require(domain.Public()))(func(c echo.Context) error {
		if c.Get(IdentityKey) != nil {
			t.Fatalf("anonymous request should carry no identity")
		}
		return c.NoContent(http.StatusNoContent)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestAuthMiddleware_PropagatesForbidden(t *testing.T) {
	guard := &stubGuard{authorizeFn: func(_ context.Context, token string, req domain.Requirement) (*domain.Identity, error) {
		if token != "tok" || req.Level != domain.AccessSuperuser {
			t.Fatalf("unexpected guard args: %q %+v", token, req)
		}
		return nil, domain.ErrForbidden
	}}
	c, _ := newContext("Bearer tok")

	handler := Auth(guard, nil, Require(domain.SuperuserOnly()))(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthMiddleware_BadParamNeedsAuthentication(t *testing.T) {
	repo := memory.NewAccountRepository()
	if _, err := repo.Create(context.Background(), &domain.Account{Email: "a@x.com", Username: "alice", IsActive: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	issuer := security.NewJWTIssuer(testSecret, nil)
	guard := service.NewAccessGuard(repo, issuer)
	mw := Auth(guard, nil, SelfOrSuperuserParam("id"))
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	c, _ := newContext("")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous: expected ErrUnauthenticated, got %v", err)
	}

	token, err := issuer.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, _ = newContext("Bearer " + token)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	err = handler(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("authenticated: expected 422, got %v", err)
	}
}
