package security

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/pkg/clock"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock() *clock.Manual {
	return clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	t.Parallel()
	iss := NewJWTIssuer(testSecret, fixedClock())

	for _, ttl := range []time.Duration{time.Second, 30 * time.Minute, 24 * time.Hour} {
		tok, err := iss.Issue("alice", ttl)
		if err != nil {
			t.Fatalf("Issue(%v) error: %v", ttl, err)
		}
		sub, err := iss.Verify(tok)
		if err != nil {
			t.Fatalf("Verify(ttl=%v) error: %v", ttl, err)
		}
		if sub != "alice" {
			t.Fatalf("expected subject alice, got %q", sub)
		}
	}
}

func TestJWTIssuer_SubSecondTTLMidSecond(t *testing.T) {
	t.Parallel()
	clk := clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 200*int(time.Millisecond), time.UTC))
	iss := NewJWTIssuer(testSecret, clk)

	for _, ttl := range []time.Duration{time.Millisecond, 500 * time.Millisecond, 1500 * time.Millisecond} {
		tok, err := iss.Issue("alice", ttl)
		if err != nil {
			t.Fatalf("Issue(%v) error: %v", ttl, err)
		}
		sub, err := iss.Verify(tok)
		if err != nil {
			t.Fatalf("Verify right after Issue(%v) failed: %v", ttl, err)
		}
		if sub != "alice" {
			t.Fatalf("expected subject alice, got %q", sub)
		}
	}

	// The rounded expiry still ends the token.
	tok, err := iss.Issue("alice", 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	clk.Advance(800 * time.Millisecond)
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at the next whole second, got %v", err)
	}
}

func TestJWTIssuer_NoRoleClaims(t *testing.T) {
	t.Parallel()
	iss := NewJWTIssuer(testSecret, fixedClock())

	tok, err := iss.Issue("alice", time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}
	got := make([]string, 0, len(claims))
	for k := range claims {
		got = append(got, k)
	}
	sort.Strings(got)
	if len(got) != 3 || got[0] != "exp" || got[1] != "iat" || got[2] != "sub" {
		t.Fatalf("expected only exp, iat and sub claims, got %v", got)
	}
}

func TestJWTIssuer_Expiry(t *testing.T) {
	t.Parallel()
	clk := fixedClock()
	iss := NewJWTIssuer(testSecret, clk)

	tok, err := iss.Issue("alice", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	clk.Advance(30*time.Minute - time.Second)
	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("expected token valid one second before expiry, got %v", err)
	}

	clk.Advance(time.Second)
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at exp, got %v", err)
	}

	clk.Advance(time.Hour)
	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after exp, got %v", err)
	}
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	t.Parallel()
	clk := fixedClock()

	tok, err := NewJWTIssuer(testSecret, clk).Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewJWTIssuer([]byte("another-secret-another-secret-xx"), clk).Verify(tok)
	if !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTIssuer_Malformed(t *testing.T) {
	t.Parallel()
	iss := NewJWTIssuer(testSecret, fixedClock())

	for _, tok := range []string{"", "not-a-token", "not.a.jwt", "a.b.c.d"} {
		if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestJWTIssuer_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	clk := fixedClock()
	iss := NewJWTIssuer(testSecret, clk)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	if _, err := iss.Verify(tok); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for HS512, got %v", err)
	}
}

func TestJWTIssuer_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()
	iss := NewJWTIssuer(testSecret, fixedClock())

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice"}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := iss.Verify(noExp); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("missing exp: expected ErrTokenMalformed, got %v", err)
	}

	noSub, err := iss.Issue("", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := iss.Verify(noSub); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("empty sub: expected ErrTokenMalformed, got %v", err)
	}
}
