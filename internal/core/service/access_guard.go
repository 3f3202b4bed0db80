package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

// AccessGuard resolves bearer tokens to identities and applies
// authorization requirements. Roles always come from the stored account,
// never from the token.
type AccessGuard struct {
	repo   ports.AccountRepository
	tokens ports.TokenIssuer
}

func NewAccessGuard(repo ports.AccountRepository, tokens ports.TokenIssuer) *AccessGuard {
	return &AccessGuard{repo: repo, tokens: tokens}
}

// Authorize checks token against req and returns the caller.
//
// A Public requirement never fails: a missing or unusable token resolves to
// a nil identity. For every other level a bad, expired or orphaned token is
// domain.ErrUnauthenticated, a deactivated account is
// domain.ErrInactiveAccount and an insufficient role is domain.ErrForbidden.
func (g *AccessGuard) Authorize(ctx context.Context, token string, req domain.Requirement) (*domain.Identity, error) {
	if req.Level == domain.AccessPublic {
		if token == "" {
			return nil, nil
		}
		id, err := g.resolve(ctx, token)
		if err != nil {
			return nil, nil
		}
		return id, nil
	}

	id, err := g.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := req.Allows(id); err != nil {
		return nil, err
	}
	return id, nil
}

func (g *AccessGuard) resolve(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	subject, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	account, err := g.repo.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}

	if !account.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	return account.Identity(), nil
}
