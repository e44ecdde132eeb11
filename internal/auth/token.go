package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL bounds a session token's lifetime when no explicit TTL is
// configured. Expiry is absolute from issuance; there is no refresh path.
const DefaultTokenTTL = 300 * time.Minute

// ErrInvalidToken covers every verification failure: bad signature,
// malformed structure, or expiry in the past. Callers never learn which.
var ErrInvalidToken = errors.New("invalid token or token expired")

// TokenService issues and verifies signed, self-contained session tokens.
// Tokens bind a subject and an absolute expiry under a single process-wide
// symmetric secret; verification needs no server-side lookup.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService constructs a token service with the supplied secret and
// default token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue mints a token asserting the subject until the configured expiry.
func (t *TokenService) Issue(subject string) (string, error) {
	return t.IssueWithTTL(subject, t.ttl)
}

// IssueWithTTL mints a token with an explicit lifetime. The lifetime is
// honored as given; a non-positive value yields an already-expired token.
func (t *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the embedded subject.
// It returns ErrInvalidToken on any failure and never panics.
func (t *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TokenTTL reports the configured default token lifetime.
func (t *TokenService) TokenTTL() time.Duration {
	return t.ttl
}
