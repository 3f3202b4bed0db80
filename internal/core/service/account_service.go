package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
	"github.com/99minutos/accounts-service/internal/pkg/clock"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// AccountOptions tunes AccountService behaviour.
type AccountOptions struct {
	// OpenRegistration allows anonymous signup.
	OpenRegistration bool
	Clock            clock.Clock
}

// AccountService implements the CRUD use cases over accounts.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	audit  ports.AuditPublisher
	opts   AccountOptions
	log    zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	audit ports.AuditPublisher,
	opts AccountOptions,
	log zerolog.Logger,
) *AccountService {
	if opts.Clock == nil {
		opts.Clock = clock.System()
	}
	if audit == nil {
		audit = noopAudit{}
	}
	return &AccountService{repo: repo, hasher: hasher, audit: audit, opts: opts, log: log}
}

type noopAudit struct{}

func (noopAudit) Publish(domain.AccountEvent) {}

// Register creates an active, unprivileged account for an anonymous caller.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if !s.opts.OpenRegistration {
		return nil, domain.ErrForbidden
	}
	return s.create(ctx, 0, in.Email, in.Username, in.Password, true, false)
}

// Create lets a superuser create an account with arbitrary flags.
func (s *AccountService) Create(ctx context.Context, caller *domain.Identity, in ports.CreateAccountInput) (*domain.Account, error) {
	if err := domain.SuperuserOnly().Allows(caller); err != nil {
		return nil, err
	}
	return s.create(ctx, caller.ID, in.Email, in.Username, in.Password, in.IsActive, in.IsSuperuser)
}

// EnsureSuperuser creates the bootstrap superuser unless an account with the
// same username or email already exists.
func (s *AccountService) EnsureSuperuser(ctx context.Context, email, username, password string) (*domain.Account, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("ensure superuser: %w", err)
	}
	existing, err = s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, fmt.Errorf("ensure superuser: %w", err)
	}
	return s.create(ctx, 0, email, username, password, true, true)
}

func (s *AccountService) Get(ctx context.Context, caller *domain.Identity, id int64) (*domain.Account, error) {
	if err := domain.SelfOrSuperuser(id).Allows(caller); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context, caller *domain.Identity, skip, limit int) (*ports.ListAccountsResult, error) {
	if err := domain.SuperuserOnly().Allows(caller); err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return &ports.ListAccountsResult{Items: items, Total: total, Skip: skip, Limit: limit}, nil
}

// UpdateSelf applies non-privileged changes to the caller's own account.
// Passwords change only through ChangePassword, which checks the current one.
func (s *AccountService) UpdateSelf(ctx context.Context, caller *domain.Identity, in ports.UpdateAccountInput) (*domain.Account, error) {
	if err := domain.AnyAuthenticated().Allows(caller); err != nil {
		return nil, err
	}
	if in.HasPrivilegeChanges() || in.Password != nil {
		return nil, domain.ErrForbidden
	}
	return s.update(ctx, caller, caller.ID, in)
}

// Update changes the account id. Callers may update themselves; privilege
// flags, password resets and other accounts need a superuser.
func (s *AccountService) Update(ctx context.Context, caller *domain.Identity, id int64, in ports.UpdateAccountInput) (*domain.Account, error) {
	if err := domain.SelfOrSuperuser(id).Allows(caller); err != nil {
		return nil, err
	}
	if (in.HasPrivilegeChanges() || in.Password != nil) && !caller.IsSuperuser {
		return nil, domain.ErrForbidden
	}
	return s.update(ctx, caller, id, in)
}

func (s *AccountService) ChangePassword(ctx context.Context, caller *domain.Identity, current, next string) error {
	if err := domain.AnyAuthenticated().Allows(caller); err != nil {
		return err
	}

	account, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, account.PasswordHash) {
		return domain.ErrIncorrectPassword
	}
	if current == next {
		return domain.ErrPasswordUnchanged
	}
	if !domain.IsStrongPassword(next) {
		return domain.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	account.UpdatedAt = s.now()

	if _, err := s.repo.Update(ctx, account); err != nil {
		return err
	}
	s.publish(domain.EventAccountPasswordChanged, account, caller.ID)
	return nil
}

// Delete hard-deletes an account. A superuser cannot delete itself.
func (s *AccountService) Delete(ctx context.Context, caller *domain.Identity, id int64) error {
	if err := domain.SuperuserOnly().Allows(caller); err != nil {
		return err
	}
	if caller.ID == id {
		return domain.ErrForbidden
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, account); err != nil {
		return err
	}
	s.publish(domain.EventAccountDeleted, account, caller.ID)
	return nil
}

func (s *AccountService) create(ctx context.Context, actorID int64, email, username, password string, active, superuser bool) (*domain.Account, error) {
	username, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	if !domain.IsStrongPassword(password) {
		return nil, domain.ErrWeakPassword
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.Account{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     active,
		IsSuperuser:  superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("account_id", created.ID).Str("username", created.Username).Msg("account created")
	s.publish(domain.EventAccountCreated, created, actorID)
	return created, nil
}

func (s *AccountService) update(ctx context.Context, caller *domain.Identity, id int64, in ports.UpdateAccountInput) (*domain.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Copy so the repository can still see the previous username.
	next := *account

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email != account.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			next.Email = email
		}
	}
	if in.Username != nil {
		username, err := domain.NormalizeUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		if username != account.Username {
			if err := s.ensureUsernameFree(ctx, username, id); err != nil {
				return nil, err
			}
			next.Username = username
		}
	}
	if in.Password != nil {
		if !domain.IsStrongPassword(*in.Password) {
			return nil, domain.ErrWeakPassword
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}
	if in.IsActive != nil {
		next.IsActive = *in.IsActive
	}
	if in.IsSuperuser != nil {
		next.IsSuperuser = *in.IsSuperuser
	}
	next.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.publish(domain.EventAccountUpdated, updated, caller.ID)
	return updated, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string, owner int64) error {
	found, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case found.ID != owner:
		return domain.ErrDuplicateEmail
	}
	return nil
}

func (s *AccountService) ensureUsernameFree(ctx context.Context, username string, owner int64) error {
	found, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check username: %w", err)
	case found.ID != owner:
		return domain.ErrDuplicateUsername
	}
	return nil
}

func (s *AccountService) publish(t domain.AccountEventType, a *domain.Account, actorID int64) {
	s.audit.Publish(domain.AccountEvent{
		Type:      t,
		AccountID: a.ID,
		Username:  a.Username,
		ActorID:   actorID,
		At:        s.now(),
	})
}

func (s *AccountService) now() time.Time {
	return s.opts.Clock.Now().UTC()
}
