package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
	"github.com/99minutos/accounts-service/internal/infrastructure/db/memory"
	"github.com/99minutos/accounts-service/internal/infrastructure/security"
	"github.com/99minutos/accounts-service/internal/pkg/clock"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AccountEvent
}

func (a *recordingAudit) Publish(e domain.AccountEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.AccountEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AccountEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

// failingRepo fails every lookup with err.
type failingRepo struct {
	ports.AccountRepository
	err error
}

func (r failingRepo) FindByUsername(context.Context, string) (*domain.Account, error) {
	return nil, r.err
}

type fixture struct {
	repo     *memory.AccountRepository
	hasher   *security.BcryptHasher
	tokens   *security.JWTIssuer
	clock    *clock.Manual
	audit    *recordingAudit
	accounts *AccountService
	auth     *AuthService
	guard    *AccessGuard
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   memory.NewAccountRepository(),
		hasher: security.NewBcryptHasher(bcrypt.MinCost),
		clock:  clock.NewManual(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		audit:  &recordingAudit{},
	}
	f.tokens = security.NewJWTIssuer(testSecret, f.clock)
	f.accounts = NewAccountService(f.repo, f.hasher, f.audit, AccountOptions{
		OpenRegistration: true,
		Clock:            f.clock,
	}, zerolog.Nop())
	f.auth = NewAuthService(f.repo, f.hasher, f.tokens, DefaultTokenTTL, zerolog.Nop())
	f.guard = NewAccessGuard(f.repo, f.tokens)
	return f
}

// seed stores an account directly with a hashed password.
func (f *fixture) seed(t *testing.T, username, password string, active, superuser bool) *domain.Account {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a, err := f.repo.Create(context.Background(), &domain.Account{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: hash,
		IsActive:     active,
		IsSuperuser:  superuser,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return a
}

func (f *fixture) token(t *testing.T, username string) string {
	t.Helper()
	tok, err := f.tokens.Issue(username, DefaultTokenTTL)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}
