package handler

import (
	"time"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type createAccountRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Username    string `json:"username"     validate:"required,min=3,max=50"`
	Password    string `json:"password"     validate:"required,min=8,max=128"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// updateMeRequest still decodes the privilege flags so that an attempt to
// set them is refused instead of silently ignored.
type updateMeRequest struct {
	Email       *string `json:"email"        validate:"omitempty,email,max=255"`
	Username    *string `json:"username"     validate:"omitempty,min=3,max=50"`
	IsActive    *bool   `json:"is_active"    swaggerignore:"true"`
	IsSuperuser *bool   `json:"is_superuser" swaggerignore:"true"`
}

type updateAccountRequest struct {
	Email       *string `json:"email"        validate:"omitempty,email,max=255"`
	Username    *string `json:"username"     validate:"omitempty,min=3,max=50"`
	Password    *string `json:"password"     validate:"omitempty,min=8,max=128"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type listAccountsQuery struct {
	Skip  int `query:"skip"  validate:"gte=0"`
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

type accountResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type listAccountsResponse struct {
	Data  []accountResponse `json:"data"`
	Count int64             `json:"count"`
	Skip  int               `json:"skip"`
	Limit int               `json:"limit"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Username:    a.Username,
		IsActive:    a.IsActive,
		IsSuperuser: a.IsSuperuser,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
