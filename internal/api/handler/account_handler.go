package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-service/internal/api/metrics"
	"github.com/99minutos/accounts-service/internal/api/middleware"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// AccountHandler handles HTTP requests for account records.
type AccountHandler struct {
	service ports.AccountService
	metrics *metrics.Metrics
}

func NewAccountHandler(service ports.AccountService, m *metrics.Metrics) *AccountHandler {
	return &AccountHandler{service: service, metrics: m}
}

// Signup registers a new account without authentication.
//
// @Summary      Register a new account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	h.metrics.ObserveCreated("signup")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// Create lets a superuser create an account.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	account, err := h.service.Create(c.Request().Context(), caller, ports.CreateAccountInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		IsActive:    active,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		return err
	}
	h.metrics.ObserveCreated("admin")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// List returns a page of accounts.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  listAccountsResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users [get]
func (h *AccountHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var q listAccountsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), caller, q.Skip, q.Limit)
	if err != nil {
		return err
	}

	resp := listAccountsResponse{
		Data:  make([]accountResponse, 0, len(result.Items)),
		Count: result.Total,
		Skip:  result.Skip,
		Limit: result.Limit,
	}
	for _, a := range result.Items {
		resp.Data = append(resp.Data, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, resp)
}

// Me returns the caller's own account.
//
// @Summary      Get current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	account, err := h.service.Get(c.Request().Context(), caller, caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateMe changes the caller's email or username.
//
// @Summary      Update current account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/me [patch]
func (h *AccountHandler) UpdateMe(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req updateMeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.UpdateSelf(c.Request().Context(), caller, ports.UpdateAccountInput{
		Email:       req.Email,
		Username:    req.Username,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change current password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/me/password [patch]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Request().Context(), caller, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// Get returns one account.
//
// @Summary      Get an account by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Update changes an account. Privilege flags and password resets need a
// superuser.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Account id"
// @Param        body  body      updateAccountRequest  true  "Fields to change"
// @Success      200   {object}  accountResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *AccountHandler) Update(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.service.Update(c.Request().Context(), caller, id, ports.UpdateAccountInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Delete removes an account permanently.
//
// @Summary      Delete an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := middleware.ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}
