package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"email", &pgconn.PgError{Code: uniqueViolation, ConstraintName: emailConstraint}, domain.ErrDuplicateEmail},
		{"username", &pgconn.PgError{Code: uniqueViolation, ConstraintName: usernameConstraint}, domain.ErrDuplicateUsername},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: emailConstraint}), domain.ErrDuplicateEmail},
		{"no rows", sql.ErrNoRows, domain.ErrAccountNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapWriteError("op", tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	other := &pgconn.PgError{Code: "23503"}
	got := mapWriteError("insert account", other)
	if errors.Is(got, domain.ErrDuplicateEmail) || errors.Is(got, domain.ErrDuplicateUsername) {
		t.Fatalf("unexpected duplicate mapping: %v", got)
	}
	if !errors.As(got, new(*pgconn.PgError)) {
		t.Fatalf("expected original error to stay wrapped: %v", got)
	}
}

func TestMigrate_UsesEmbeddedFiles(t *testing.T) {
	called := false
	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB) error {
		called = true
		return nil
	}
	defer func() { gooseUp = orig }()

	if err := Migrate(context.Background(), nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !called {
		t.Fatalf("goose was not invoked")
	}
}

func TestMigrate_PropagatesError(t *testing.T) {
	orig := gooseUp
	gooseUp = func(context.Context, *sql.DB) error { return errors.New("boom") }
	defer func() { gooseUp = orig }()

	if err := Migrate(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}
