package sealbox

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session credential: who is asking, for
// how long the grant lasts, and what it may be used for.
type SessionClaims struct {
	Address string `json:"addr"`
	Scope   string `json:"scope"`
	jwt.RegisteredClaims
}

// ScopeDecrypt is the only scope the encryption service honors today.
const ScopeDecrypt = "seal:decrypt"

// NewSessionCredential mints a signed session token the encryption service
// accepts alongside an approve transaction.
func NewSessionCredential(priv ed25519.PrivateKey, address string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Address: address,
		Scope:   ScopeDecrypt,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	if err != nil {
		return "", fmt.Errorf("sealbox: sign session credential: %w", err)
	}
	return token, nil
}

// VerifySessionCredential checks a session token against the holder's public
// key and returns its claims. Used by tests and by callers that proxy
// sessions for their own users.
func VerifySessionCredential(token string, pub ed25519.PublicKey) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sealbox: verify session credential: %w", err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("sealbox: invalid session credential")
	}
	return claims, nil
}
