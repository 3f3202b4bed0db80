package domain

import "unicode"

const PasswordMinLength = 8

// IsStrongPassword reports whether p is at least PasswordMinLength
// characters long and holds an ASCII upper-case letter, an ASCII
// lower-case letter and a decimal digit of any script.
func IsStrongPassword(p string) bool {
	if len([]rune(p)) < PasswordMinLength {
		return false
	}

	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
