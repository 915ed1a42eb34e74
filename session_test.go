package haven

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/sealbox"
)

func TestNewSession(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.client.NewSession(context.Background(), time.Minute)
	require.NoError(t, err)

	seed, err := hex.DecodeString(testSeed)
	require.NoError(t, err)
	priv := ed25519.NewKeyFromSeed(seed)
	claims, err := sealbox.VerifySessionCredential(token, priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	require.Equal(t, env.client.Address(), claims.Address)
	require.Equal(t, sealbox.ScopeDecrypt, claims.Scope)
}

func TestNewSessionDefaultTTL(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.client.NewSession(context.Background(), 0)
	require.NoError(t, err)

	seed, _ := hex.DecodeString(testSeed)
	priv := ed25519.NewKeyFromSeed(seed)
	claims, err := sealbox.VerifySessionCredential(token, priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	require.Equal(t, DefaultSessionTTL, ttl)
}

func TestNewSessionSelfPayNotSupported(t *testing.T) {
	submit := func(context.Context, []byte) (*TransactionResponse, error) { return okResponse(1), nil }
	env := newTestEnv(t, withSelfPay(submit, "0xwallet"))

	_, err := env.client.NewSession(context.Background(), time.Minute)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
}
