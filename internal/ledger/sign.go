package ledger

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Signer holds an ed25519 private key and its derived ledger address.
// Signing is a pure operation on immutable state, so one Signer may be shared
// by concurrent sagas.
type Signer struct {
	priv ed25519.PrivateKey
	addr string
}

// NewSigner wraps an existing private key.
func NewSigner(priv ed25519.PrivateKey) *Signer {
	pub := priv.Public().(ed25519.PublicKey)
	sum := blake2b.Sum256(pub)
	return &Signer{priv: priv, addr: "0x" + hex.EncodeToString(sum[:])}
}

// NewSignerFromHex builds a Signer from a hex-encoded 32-byte seed, with or
// without a 0x prefix.
func NewSignerFromHex(s string) (*Signer, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ledger: decode signer key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ledger: signer key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return NewSigner(ed25519.NewKeyFromSeed(seed)), nil
}

// Address returns the ledger address derived from the public key.
func (s *Signer) Address() string { return s.addr }

// PrivateKey exposes the underlying key for signing outside the ledger wire
// format, such as session credentials.
func (s *Signer) PrivateKey() ed25519.PrivateKey { return s.priv }

// Sign signs the blake2b digest of the transaction bytes.
func (s *Signer) Sign(txBytes []byte) []byte {
	sum := blake2b.Sum256(txBytes)
	return ed25519.Sign(s.priv, sum[:])
}

// TransactionDigest is the hex digest under which a transaction is queryable.
func TransactionDigest(txBytes []byte) string {
	sum := blake2b.Sum256(txBytes)
	return "0x" + hex.EncodeToString(sum[:])
}
