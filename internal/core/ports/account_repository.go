package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// AccountRepository defines the persistence operations for accounts.
// Lookups return domain.ErrAccountNotFound when nothing matches. Create and
// Update must enforce email/username uniqueness atomically and report
// violations as domain.ErrDuplicateEmail / domain.ErrDuplicateUsername.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	// FindByEmail expects an already normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// List returns a page ordered by id and the total number of accounts.
	List(ctx context.Context, skip, limit int) ([]*domain.Account, int64, error)
	// Create assigns the account ID and returns the stored record.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) (*domain.Account, error)
	Delete(ctx context.Context, account *domain.Account) error
}

// AuditRepository persists account audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AccountEvent) error
}

// AuditPublisher hands audit events off for asynchronous persistence.
type AuditPublisher interface {
	Publish(event domain.AccountEvent)
}
