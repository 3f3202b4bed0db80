package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

type AuthHandler struct {
	authService    ports.AuthService
	accountService ports.AccountService
	metrics        *metrics.Metrics
}

func NewAuthHandler(authService ports.AuthService, accountService ports.AccountService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService, metrics: m}
}

// loginRequest accepts both JSON and OAuth2-style form bodies.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login exchanges credentials for a bearer token.
//
// @Summary      Login
// @Tags         login
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /login/access-token [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.ObserveLogin(loginResult(err))
		return err
	}
	h.metrics.ObserveLogin("success")

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.Token,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}

// TestToken returns the account the presented token belongs to.
//
// @Summary      Test access token
// @Tags         login
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /login/test-token [post]
func (h *AuthHandler) TestToken(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	account, err := h.accountService.Get(c.Request().Context(), caller, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "inactive"
	default:
		return "error"
	}
}
