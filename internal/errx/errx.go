// Package errx defines the SDK error taxonomy shared across client and
// internal layers. Every failure surfaced to a caller is exactly one of these
// kinds, wrapping the original cause. Callers should use errors.As to match.
package errx

import "fmt"

// ValidationError reports bad input, a missing permission, a failed lookup,
// or missing decryption material. Never retried automatically.
type ValidationError struct {
	Msg   string
	Cause error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation: %s: %v", e.Msg, e.Cause)
	}
	return "validation: " + e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NetworkError reports a blob-store HTTP failure. StatusCode is zero when the
// failure happened before a response was received.
type NetworkError struct {
	Msg        string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	s := "network: " + e.Msg
	if e.StatusCode != 0 {
		s = fmt.Sprintf("%s (status %d)", s, e.StatusCode)
	}
	if e.Cause != nil {
		s = fmt.Sprintf("%s: %v", s, e.Cause)
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// EncryptionError reports an encrypt/decrypt failure against the encryption
// service.
type EncryptionError struct {
	Msg     string
	AssetID string
	BlobID  string
	Cause   error
}

func (e *EncryptionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("encryption: %s: %v", e.Msg, e.Cause)
	}
	return "encryption: " + e.Msg
}

func (e *EncryptionError) Unwrap() error { return e.Cause }

// BlockchainError reports a ledger mutation or query failure. Digest is set
// when the transaction was submitted, so a failed-but-possibly-committed
// mutation stays diagnosable. AssetID/BlobID carry partial-saga context.
type BlockchainError struct {
	Msg     string
	Digest  string
	AssetID string
	BlobID  string
	Cause   error
}

func (e *BlockchainError) Error() string {
	s := "blockchain: " + e.Msg
	if e.Digest != "" {
		s += " (digest " + e.Digest + ")"
	}
	if e.AssetID != "" {
		s += " (asset " + e.AssetID + ")"
	}
	if e.Cause != nil {
		s = fmt.Sprintf("%s: %v", s, e.Cause)
	}
	return s
}

func (e *BlockchainError) Unwrap() error { return e.Cause }

// ConfigurationError reports an unsatisfiable configuration: a gas strategy
// without its required material, or a missing network deployment.
type ConfigurationError struct {
	Msg   string
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Msg, e.Cause)
	}
	return "configuration: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// Configurationf builds a ConfigurationError with a formatted message.
func Configurationf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
