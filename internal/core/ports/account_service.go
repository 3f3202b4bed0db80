package ports

import (
	"context"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// CreateAccountInput is the administrative create payload.
type CreateAccountInput struct {
	Email       string
	Username    string
	Password    string
	IsActive    bool
	IsSuperuser bool
}

// UpdateAccountInput carries optional changes; nil fields are left as is.
// IsActive and IsSuperuser are privilege fields and need a superuser caller.
type UpdateAccountInput struct {
	Email       *string
	Username    *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// HasPrivilegeChanges reports whether the input touches role flags.
func (in UpdateAccountInput) HasPrivilegeChanges() bool {
	return in.IsActive != nil || in.IsSuperuser != nil
}

// ListAccountsResult is a page of accounts.
type ListAccountsResult struct {
	Items []*domain.Account
	Total int64
	Skip  int
	Limit int
}

// AccountService defines the use cases over account records. Every method
// that acts for a caller receives the caller's identity explicitly.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Create(ctx context.Context, caller *domain.Identity, in CreateAccountInput) (*domain.Account, error)
	Get(ctx context.Context, caller *domain.Identity, id int64) (*domain.Account, error)
	List(ctx context.Context, caller *domain.Identity, skip, limit int) (*ListAccountsResult, error)
	UpdateSelf(ctx context.Context, caller *domain.Identity, in UpdateAccountInput) (*domain.Account, error)
	Update(ctx context.Context, caller *domain.Identity, id int64, in UpdateAccountInput) (*domain.Account, error)
	ChangePassword(ctx context.Context, caller *domain.Identity, current, next string) error
	Delete(ctx context.Context, caller *domain.Identity, id int64) error
}
