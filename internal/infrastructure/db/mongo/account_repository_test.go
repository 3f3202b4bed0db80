package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

func TestDuplicateError(t *testing.T) {
	emailErr := errors.New(`E11000 duplicate key error collection: accounts.accounts index: email_unique dup key: { email: "a@x.com" }`)
	if got := duplicateError(emailErr); !errors.Is(got, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", got)
	}

	userErr := errors.New(`E11000 duplicate key error collection: accounts.accounts index: username_unique dup key: { username: "alice" }`)
	if got := duplicateError(userErr); !errors.Is(got, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", got)
	}
}

func TestDocumentMapping(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &domain.Account{
		ID:           42,
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		IsSuperuser:  true,
		CreatedAt:    now,
		UpdatedAt:    now.Add(time.Hour),
	}

	out := toDocument(in).toDomain()
	if *out != *in {
		t.Fatalf("mapping mismatch:\n got %+v\nwant %+v", out, in)
	}
}
