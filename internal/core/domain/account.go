package domain

import (
	"strings"
	"time"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

// Account is the authoritative identity record. PasswordHash always holds a
// hasher digest, never the plaintext.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the caller view of the account.
func (a *Account) Identity() *Identity {
	return &Identity{
		ID:          a.ID,
		Username:    a.Username,
		IsActive:    a.IsActive,
		IsSuperuser: a.IsSuperuser,
	}
}

// Identity is a resolved caller. It is produced by the access guard and
// handed explicitly to every operation that acts on behalf of a caller.
type Identity struct {
	ID          int64
	Username    string
	IsActive    bool
	IsSuperuser bool
}

// NormalizeEmail lower-cases and trims an email so that comparisons and the
// unique index are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername sanitizes a username and checks its length.
func NormalizeUsername(username string) (string, error) {
	clean := SanitizeIdentifier(strings.TrimSpace(username))
	n := len([]rune(clean))
	if n < UsernameMinLength || n > UsernameMaxLength {
		return "", ErrInvalidUsername
	}
	return clean, nil
}
