package haven

import "github.com/havenstore/haven-go/internal/errx"

// The SDK surfaces exactly one of five error kinds per failure. Match them
// with errors.As; every kind preserves its original cause for logging.
type (
	// ValidationError: bad input, missing permission, not-found-after-lookup,
	// or missing decryption material. Never retried automatically.
	ValidationError = errx.ValidationError

	// NetworkError: a blob-store HTTP failure, with the status code when one
	// was received.
	NetworkError = errx.NetworkError

	// EncryptionError: an encrypt/decrypt failure against the encryption
	// service.
	EncryptionError = errx.EncryptionError

	// BlockchainError: a ledger mutation or query failure. Carries the
	// transaction digest when known, and asset/blob ids for partial-saga
	// failures.
	BlockchainError = errx.BlockchainError

	// ConfigurationError: an unsatisfiable authorization strategy or a
	// missing network deployment.
	ConfigurationError = errx.ConfigurationError
)
