package errx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsAs_MatchesKind(t *testing.T) {
	cause := errors.New("boom")

	wrapped := fmt.Errorf("saga step: %w", &BlockchainError{Msg: "submit failed", Digest: "0xd1", Cause: cause})

	var be *BlockchainError
	require.True(t, errors.As(wrapped, &be))
	require.Equal(t, "0xd1", be.Digest)
	require.ErrorIs(t, wrapped, cause)

	var ve *ValidationError
	require.False(t, errors.As(wrapped, &ve))
}

func TestErrorStrings_CarryContext(t *testing.T) {
	ne := &NetworkError{Msg: "upload failed", StatusCode: 413}
	require.Contains(t, ne.Error(), "413")

	be := &BlockchainError{Msg: "policy creation failed", Digest: "0xd2", AssetID: "0xa1"}
	require.Contains(t, be.Error(), "0xd2")
	require.Contains(t, be.Error(), "0xa1")

	require.Contains(t, Validationf("missing %s permission", "upload").Error(), "missing upload permission")
	require.Contains(t, Configurationf("no deployment for %q", "testnet").Error(), "testnet")
}
