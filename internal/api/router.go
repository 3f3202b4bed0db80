// Package api wires the HTTP surface of the accounts service.
package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/99minutos/accounts-service/docs"
	"github.com/99minutos/accounts-service/internal/api/handler"
	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/api/middleware"
	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const basePath = "/api/v1"

// Deps carries everything the router needs. Registry is used both to
// register HTTP metrics and to serve /metrics.
type Deps struct {
	Log            zerolog.Logger
	AuthService    ports.AuthService
	AccountService ports.AccountService
	Guard          ports.AccessGuard
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	Readiness      map[string]handler.PingFunc

	CORSAllowOrigins []string
	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS float64
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	if len(d.CORSAllowOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins: d.CORSAllowOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}
	if d.RateLimitRPS > 0 {
		e.Use(echomiddleware.RateLimiter(
			echomiddleware.NewRateLimiterMemoryStore(rate.Limit(d.RateLimitRPS)),
		))
	}
	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "accounts",
			Registerer: d.Registry,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Registry,
		}))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.AuthService, d.AccountService, d.Metrics)
	accountHandler := handler.NewAccountHandler(d.AccountService, d.Metrics)

	guard := func(req middleware.RequirementFunc) echo.MiddlewareFunc {
		return middleware.Auth(d.Guard, d.Metrics, req)
	}
	authenticated := guard(middleware.Require(domain.AnyAuthenticated()))
	superuser := guard(middleware.Require(domain.SuperuserOnly()))
	selfOrSuperuser := guard(middleware.SelfOrSuperuserParam("id"))

	v1 := e.Group(basePath)

	// --- Login ---
	v1.POST("/login/access-token", authHandler.Login)
	v1.POST("/login/test-token", authHandler.TestToken, authenticated)

	// --- Users ---
	v1.POST("/users/signup", accountHandler.Signup)
	v1.POST("/users", accountHandler.Create, superuser)
	v1.GET("/users", accountHandler.List, superuser)
	v1.GET("/users/me", accountHandler.Me, authenticated)
	v1.PATCH("/users/me", accountHandler.UpdateMe, authenticated)
	v1.PATCH("/users/me/password", accountHandler.ChangePassword, authenticated)
	v1.GET("/users/:id", accountHandler.Get, selfOrSuperuser)
	v1.PATCH("/users/:id", accountHandler.Update, selfOrSuperuser)
	v1.DELETE("/users/:id", accountHandler.Delete, superuser)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
