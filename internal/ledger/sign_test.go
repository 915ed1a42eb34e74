package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestNewSignerFromHex_RoundTrip(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	s1, err := NewSignerFromHex(hex.EncodeToString(seed))
	require.NoError(t, err)
	s2, err := NewSignerFromHex("0x" + hex.EncodeToString(seed))
	require.NoError(t, err)

	require.Equal(t, s1.Address(), s2.Address())
	require.True(t, strings.HasPrefix(s1.Address(), "0x"))
	require.Len(t, s1.Address(), 2+64)
}

func TestNewSignerFromHex_BadInput(t *testing.T) {
	_, err := NewSignerFromHex("not-hex")
	require.Error(t, err)

	_, err = NewSignerFromHex("abcd")
	require.Error(t, err)
}

func TestSign_VerifiableOverDigest(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	s := NewSigner(priv)

	tx := []byte(`{"calls":[]}`)
	sig := s.Sign(tx)

	sum := blake2b.Sum256(tx)
	pub := priv.Public().(ed25519.PublicKey)
	require.True(t, ed25519.Verify(pub, sum[:], sig))
}

func TestTransactionDigest_Deterministic(t *testing.T) {
	d1 := TransactionDigest([]byte("abc"))
	d2 := TransactionDigest([]byte("abc"))
	require.Equal(t, d1, d2)
	require.NotEqual(t, d1, TransactionDigest([]byte("abd")))
}

func TestTransaction_Encode(t *testing.T) {
	tx := &Transaction{Calls: []Call{{Module: VaultModule, Function: FnRegisterAsset, Args: []any{"blob"}}}}
	b, err := tx.Encode()
	require.NoError(t, err)
	require.Contains(t, string(b), FnRegisterAsset)
	require.NotContains(t, string(b), "sender", "empty sender must be omitted")

	_, err = (&Transaction{}).Encode()
	require.Error(t, err)
}
