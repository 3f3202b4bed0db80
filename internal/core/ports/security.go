package ports

import "time"

// PasswordHasher produces and checks one-way salted password digests.
// Verify never fails loudly: a malformed digest simply does not match.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer creates and validates signed, time-bounded bearer tokens.
// Verify returns domain.ErrTokenMalformed or domain.ErrTokenExpired.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}
