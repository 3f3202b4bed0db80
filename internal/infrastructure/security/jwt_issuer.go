package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/pkg/clock"
)

// JWTIssuer signs HS256 tokens whose only application claim is the subject.
// Roles are never embedded; callers re-resolve them on every use.
type JWTIssuer struct {
	secret []byte
	clock  clock.Clock
	parser *jwt.Parser
}

// NewJWTIssuer builds an issuer over secret. A nil clock means wall time.
func NewJWTIssuer(secret []byte, clk clock.Clock) *JWTIssuer {
	if clk == nil {
		clk = clock.System()
	}
	return &JWTIssuer{
		secret: secret,
		clock:  clk,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(clk.Now),
		),
	}
}

// Issue signs a token for subject valid for at least ttl.
func (i *JWTIssuer) Issue(subject string, ttl time.Duration) (string, error) {
	now := i.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry(now, ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the token subject. Expiry is reported as
// domain.ErrTokenExpired once now >= exp; every other failure is
// domain.ErrTokenMalformed.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenMalformed
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrTokenMalformed
	}
	return claims.Subject, nil
}

// expiry rounds now+ttl up to a whole second. NumericDate truncates, which
// would otherwise turn a short ttl issued mid-second into an expired token.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if t := exp.Truncate(jwt.TimePrecision); !t.Equal(exp) {
		return t.Add(jwt.TimePrecision)
	}
	return exp
}
