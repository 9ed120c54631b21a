package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lyceum-sis/lyceum/internal/shared"
)

// Claims is the decoded payload of an identity token: the account it asserts
// and when the assertion lapses.
type Claims struct {
	UserID    shared.ID
	ExpiresAt time.Time
}

// Codec signs and validates identity tokens. Tokens are stateless HS256 JWTs
// carrying the subject id and expiry; validity is signature plus expiry, with
// no server-side revocation list. The codec performs no I/O.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec. The secret is process configuration, injected
// once at startup; ttl is the configured token lifetime.
func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue produces a signed token for the account, expiring ttl after now.
func (c *Codec) Issue(userID shared.ID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate parses and verifies a signed token. Signature comparison is
// constant time (HMAC). Failures are classified: ErrTokenExpired wins over
// other defects, then ErrTokenBadSignature, then ErrTokenMalformed.
func (c *Codec) Validate(tokenString string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			// The parser checks signatures before claims, so a forged
			// token that has also lapsed surfaces here. Expiry still
			// wins: peek at the unverified claims.
			if expiredUnverified(tokenString) {
				return Claims{}, ErrTokenExpired
			}
			return Claims{}, ErrTokenBadSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}

	registered, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || registered.ExpiresAt == nil {
		return Claims{}, ErrTokenMalformed
	}
	userID, err := shared.ParseID(registered.Subject)
	if err != nil {
		return Claims{}, ErrTokenMalformed
	}
	return Claims{UserID: userID, ExpiresAt: registered.ExpiresAt.Time}, nil
}

// expiredUnverified reports whether the token's embedded expiry has lapsed,
// without verifying the signature. Used only to order failure classification.
func expiredUnverified(tokenString string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now())
}
