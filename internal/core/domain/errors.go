package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("not enough privileges")

	ErrWeakPassword      = errors.New("password must be at least 8 characters and contain upper-case, lower-case and digit characters")
	ErrPasswordTooLong   = errors.New("password is too long")
	ErrInvalidUsername   = errors.New("username must be between 3 and 50 characters")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPasswordUnchanged = errors.New("new password cannot be the same as the current one")

	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrAccountNotFound   = errors.New("account not found")

	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
)
