package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const DefaultTokenTTL = 30 * time.Minute

// timingDummy is hashed once per service and compared against when the
// username is unknown, so both failure paths pay for one hash comparison.
const timingDummy = "timing-equalizer-Password1"

// AuthService implements the credential login flow.
type AuthService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	tokenTTL time.Duration
	dummy    string
	log      zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	dummy, err := hasher.Hash(timingDummy)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare timing dummy digest")
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		dummy:    dummy,
		log:      log,
	}
}

// Login verifies username and password and issues a bearer token.
// An unknown username and a wrong password both yield
// domain.ErrInvalidCredentials; an inactive account with valid credentials
// yields domain.ErrInactiveAccount.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AccessToken, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.hasher.Verify(password, s.dummy)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	token, err := s.tokens.Issue(account.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("login issue token: %w", err)
	}

	s.log.Debug().Int64("account_id", account.ID).Msg("login succeeded")

	return &ports.AccessToken{
		Token:     token,
		TokenType: ports.TokenTypeBearer,
		ExpiresIn: int64(s.tokenTTL / time.Second),
	}, nil
}
