// Package token issues and parses the signed session tokens handed out on
// successful login. Tokens are self-contained: validity is purely signature
// plus expiry, nothing is persisted server-side.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/primeshop/account-service/internal/core/domain"
)

// HS512 keys shorter than the hash output weaken the MAC, so anything under
// 64 bytes is refused at construction time.
const minSecretBytes = 64

const defaultTTL = 2 * time.Hour

var ErrWeakSecret = errors.New("signing secret missing or shorter than 64 bytes")
var ErrInvalidToken = errors.New("invalid token")

// Claims is the claim set embedded in every issued token. The registered ID
// field carries a fresh uuid per token so two logins with identical inputs
// never produce identical tokens.
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"user_id"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs time-bound HS512 tokens with a shared symmetric secret.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewIssuer validates the secret and returns a ready Issuer. A zero or
// negative ttl falls back to two hours.
func NewIssuer(secret, issuer, audience string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("token: %w", ErrWeakSecret)
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token asserting the user's identity and role set and returns
// it together with its expiry.
func (i *Issuer) Issue(user *domain.User, roles []string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := &Claims{
		Username: user.Username,
		UserID:   user.ID,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature, expiry, issuer, and audience of a token
// produced by Issue and returns its claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
