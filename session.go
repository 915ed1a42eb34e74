package haven

import (
	"context"
	"time"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/errx"
	"github.com/havenstore/haven-go/internal/sealbox"
)

// DefaultSessionTTL bounds a session credential's lifetime when the caller
// does not pick one.
const DefaultSessionTTL = 10 * time.Minute

// NewSession mints a session credential accepted by the encryption service
// for decryption. Only the sponsored path holds a signing key; self-paying
// callers mint sessions with their own wallet and pass them through
// RetrieveOptions.Session.
func (c *Client) NewSession(ctx context.Context, ttl time.Duration) (string, error) {
	if _, err := c.validate(ctx, credential.PermRead); err != nil {
		return "", err
	}
	if c.auth.signer == nil {
		return "", errx.Configurationf("session credentials require the sponsored gas strategy")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	token, err := sealbox.NewSessionCredential(c.auth.signer.PrivateKey(), c.auth.address, ttl)
	if err != nil {
		return "", &errx.EncryptionError{Msg: "mint session credential", Cause: err}
	}
	return token, nil
}
