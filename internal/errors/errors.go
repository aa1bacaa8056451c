// Package errors provides centralized error handling for keyfob.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrIdentityParse indicates that an identity string does not match the
	// [proto://][user@]host[:port][/path] grammar or is missing its host.
	ErrIdentityParse = errors.New("malformed identity string")

	// ErrMalformedBlob indicates that an SSH challenge blob is truncated,
	// carries trailing bytes after its last field, or is otherwise unparseable.
	ErrMalformedBlob = errors.New("malformed challenge blob")

	// ErrProtocolMismatch indicates that an identity's protocol does not match
	// the requested operation (e.g. a non-ssh identity used for SSH signing).
	ErrProtocolMismatch = errors.New("identity protocol mismatch")

	// ErrKeyMismatch indicates that the public key returned by the signer
	// disagrees with the expected or claimed key. This must never be ignored:
	// it means the signer is answering for the wrong key, or the challenge
	// blob was tampered with.
	ErrKeyMismatch = errors.New("signer public key mismatch")

	// ErrAddressMismatch indicates that an address returned or derived during
	// the generic signing flow disagrees with the expected address.
	ErrAddressMismatch = errors.New("address mismatch")

	// ErrSignatureShape indicates a structurally invalid signature blob:
	// wrong length or a nonzero marker byte.
	ErrSignatureShape = errors.New("malformed signature blob")

	// ErrSignatureInvalid indicates that cryptographic verification of a
	// signature failed. This is a negative result, not a fault; callers map
	// it to a nonzero exit code rather than a stack trace.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrPubkeyFormat indicates structurally malformed public key material
	// (bad length, point not on curve, unparseable wire encoding).
	ErrPubkeyFormat = errors.New("malformed public key")

	// ErrUnsupportedCurve indicates a curve name outside the two the device
	// supports (nist256p1 for SSH, secp256k1 for Bitcoin-style signing).
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrConfirmationDisplayed reports that the derived address was sent to
	// the device display for out-of-band confirmation and no signature was
	// performed. Commands exit with code 2 when this is returned.
	ErrConfirmationDisplayed = errors.New("address confirmation displayed on device")

	// ErrUnknownBackend indicates that the configured device backend has not
	// been registered.
	ErrUnknownBackend = errors.New("unknown device backend")

	// ErrBackendRegistered indicates a duplicate device backend registration.
	ErrBackendRegistered = errors.New("device backend already registered")

	// ErrKeyFileRequired indicates that a file-backed signer was opened
	// without a master key location.
	ErrKeyFileRequired = errors.New("master key file not configured")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidDevice indicates an invalid device configuration value.
	ErrConfigInvalidDevice = errors.New("invalid device configuration")

	// ErrConfigInvalidIdentity indicates an invalid identity configuration value.
	ErrConfigInvalidIdentity = errors.New("invalid identity configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrSessionClosed indicates an operation was attempted on a closed
	// device session.
	ErrSessionClosed = errors.New("device session closed")
)

// ExitCodeError wraps an error with the process exit code it should map to.
// The generic signing flow uses it to surface its result enumeration
// (0 = valid, 1 = invalid, 2 = confirmation displayed) through the CLI
// boundary without losing the underlying error for errors.Is checks.
type ExitCodeError struct {
	Code int
	Err  error
}

// NewExitCodeError wraps an error with an explicit exit code.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCodeOf returns the exit code an error maps to: 0 for nil, the wrapped
// code for an ExitCodeError, and 1 for everything else.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var e *ExitCodeError
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}
