package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "accounts_email_key"
	usernameConstraint = "accounts_username_key"

	accountColumns = `id, email, username, password_hash, is_active, is_superuser, created_at, updated_at`
)

// AccountRepository implements ports.AccountRepository on PostgreSQL.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.IsActive, &a.IsSuperuser, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepository) List(ctx context.Context, skip, limit int) ([]*domain.Account, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Account, 0, limit)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return out, total, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts (email, username, password_hash, is_active, is_superuser, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+accountColumns,
		account.Email, account.Username, account.PasswordHash,
		account.IsActive, account.IsSuperuser, account.CreatedAt, account.UpdatedAt)

	created, err := scanAccount(row)
	if err != nil {
		return nil, mapWriteError("insert account", err)
	}
	return created, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE accounts
		 SET email = $2, username = $3, password_hash = $4, is_active = $5, is_superuser = $6, updated_at = $7
		 WHERE id = $1
		 RETURNING `+accountColumns,
		account.ID, account.Email, account.Username, account.PasswordHash,
		account.IsActive, account.IsSuperuser, account.UpdatedAt)

	updated, err := scanAccount(row)
	if err != nil {
		return nil, mapWriteError("update account", err)
	}
	return updated, nil
}

func (r *AccountRepository) Delete(ctx context.Context, account *domain.Account) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, account.ID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func mapWriteError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return domain.ErrDuplicateEmail
		case usernameConstraint:
			return domain.ErrDuplicateUsername
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
