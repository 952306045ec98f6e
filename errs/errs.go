// Package errs holds the error taxonomy shared by the inscription builder,
// the signers and the key service. Callers match with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is a caller error: an oversized non-chunked envelope
	// field, a digest of the wrong length, an undecodable address.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedAddressType is returned when funds are not held by a
	// legacy pay-to-pubkey-hash address.
	ErrUnsupportedAddressType = errors.New("unsupported address type")
	// ErrInsufficientFunds is returned when the selected utxos cannot pay
	// both the commit and the reveal fee.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAlreadyInitialized is returned by a second seed initialization.
	ErrAlreadyInitialized = errors.New("master key already initialized")
	// ErrAlreadyInitializing is returned while another initialization is
	// waiting on the entropy source.
	ErrAlreadyInitializing = errors.New("master key initialization in progress")
	// ErrNotInitialized is returned when keys are requested before the
	// master seed exists.
	ErrNotInitialized = errors.New("master key not initialized")
	// ErrExternalCallFailed wraps failures of the entropy source, the
	// signing oracle, the utxo provider and the broadcaster.
	ErrExternalCallFailed = errors.New("external call failed")
)

// Malformed returns an ErrMalformedInput carrying a formatted reason.
func Malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// External wraps err, returned by the named collaborator, so that both
// ErrExternalCallFailed and err itself match with errors.Is.
func External(call string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExternalCallFailed, call, err)
}
