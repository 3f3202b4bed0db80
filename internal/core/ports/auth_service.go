package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

const TokenTypeBearer = "bearer"

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int64 // seconds
}

// AuthService exchanges credentials for a bearer token.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*AccessToken, error)
}

// AccessGuard resolves a bearer token into a caller identity and checks it
// against a requirement.
type AccessGuard interface {
	Authorize(ctx context.Context, token string, req domain.Requirement) (*domain.Identity, error)
}
