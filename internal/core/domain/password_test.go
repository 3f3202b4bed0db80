package domain

import (
	"errors"
	"testing"
)

func TestIsStrongPassword(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"Password123": true,
		"Str0ngP@ss!": true,
		"Abcdefg1":    true,
		"Pass1":       false,
		"password123": false,
		"PASSWORD123": false,
		"PasswordABC": false,
		"":            false,
		"Abcdef1":     false,
		"12345678":    false,
		// Letters outside A-Z and a-z do not count as a case class.
		"PASSWORD1é": false,
		"passwordÀ1": false,
		"Ünïcødé1":   false,
		// Any Unicode decimal digit counts.
		"Password٣": true,
	}
	for in, want := range cases {
		if got := IsStrongPassword(in); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSanitizeIdentifier(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"user<script>name": "userscriptname",
		"user_name-123":    "user_name-123",
		"{a b@c.d}":        "a b@c.d",
		"<>{}":             "",
	}
	for in, want := range cases {
		if got := SanitizeIdentifier(in); got != want {
			t.Errorf("SanitizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}

	for _, in := range []string{"user<script>name", "<<a>>", "{x}y<z>", "plain", ""} {
		once := SanitizeIdentifier(in)
		if twice := SanitizeIdentifier(once); twice != once {
			t.Errorf("SanitizeIdentifier not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	got, err := NormalizeUsername("  al<i>ce ")
	if err != nil {
		t.Fatalf("NormalizeUsername error: %v", err)
	}
	if got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}

	if _, err := NormalizeUsername("<a>b"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername for short name, got %v", err)
	}
	if _, err := NormalizeUsername(string(make([]byte, 51))); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername for long name, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	if got := NormalizeEmail("  A@X.com "); got != "a@x.com" {
		t.Fatalf("expected a@x.com, got %q", got)
	}
}
