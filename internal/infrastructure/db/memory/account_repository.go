// Package memory is a process-local account store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// AccountRepository keeps accounts in maps guarded by a single mutex, which
// makes the uniqueness checks in Create and Update atomic.
type AccountRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{byID: make(map[int64]*domain.Account)}
}

func clone(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return clone(a), nil
}

func (r *AccountRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.Email == email {
			return clone(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *AccountRepository) List(_ context.Context, skip, limit int) ([]*domain.Account, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	if skip >= len(ids) {
		return []*domain.Account{}, total, nil
	}
	end := skip + limit
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]*domain.Account, 0, end-skip)
	for _, id := range ids[skip:end] {
		out = append(out, clone(r.byID[id]))
	}
	return out, total, nil
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conflict(account); err != nil {
		return nil, err
	}
	r.nextID++
	stored := clone(account)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return clone(stored), nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[account.ID]; !ok {
		return nil, domain.ErrAccountNotFound
	}
	if err := r.conflict(account); err != nil {
		return nil, err
	}
	stored := clone(account)
	r.byID[stored.ID] = stored
	return clone(stored), nil
}

func (r *AccountRepository) Delete(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.byID, account.ID)
	return nil
}

// Ping always succeeds; it lets the readiness probe treat every store alike.
func (r *AccountRepository) Ping(context.Context) error { return nil }

// conflict reports a uniqueness violation against any other account.
func (r *AccountRepository) conflict(account *domain.Account) error {
	for id, a := range r.byID {
		if id == account.ID {
			continue
		}
		if a.Email == account.Email {
			return domain.ErrDuplicateEmail
		}
		if a.Username == account.Username {
			return domain.ErrDuplicateUsername
		}
	}
	return nil
}
