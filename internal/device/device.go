// Package device defines the signer capability contract keyfob's core talks
// to, plus the registry hardware transports register their backends with.
//
// The physical connection to the signing hardware (session open/close, PIN
// entry, on-screen confirmation) lives behind the Signer interface; this
// package never touches USB/HID framing itself.
package device

import (
	"context"

	"github.com/keyfob-dev/keyfob/internal/identity"
)

// Curve names use the device's wire vocabulary.
type Curve string

const (
	// CurveNISTP256 is the NIST prime curve used for SSH identity signing.
	CurveNISTP256 Curve = "nist256p1"

	// CurveSECP256K1 is the Koblitz curve used for Bitcoin-style message
	// signing in the generic identity flow.
	CurveSECP256K1 Curve = "secp256k1"
)

// PublicNode is a public key node returned by the signer for a key path.
// PublicKey is the 33-byte compressed point encoding.
type PublicNode struct {
	PublicKey []byte
}

// IdentitySignature is the signer's response to an identity signing request.
type IdentitySignature struct {
	// PublicKey is the compressed public key the device signed with.
	PublicKey []byte

	// Signature is the 65-byte blob: a zero marker byte followed by the
	// 32-byte big-endian r and s values.
	Signature []byte

	// Address is the Bitcoin address of the signing key. Only set for
	// Koblitz-curve requests.
	Address string
}

// Signer is one open session with a signing device.
//
// Implementations may block on human interaction (PIN entry, button press,
// screen confirmation) with no timeout of their own; cancellation comes from
// ctx. Callers must not issue concurrent requests against a single session,
// and must release the session with ClearSession and Close on every exit
// path, including failures partway through an operation.
type Signer interface {
	// GetPublicNode returns the public key node at the given hardened path.
	GetPublicNode(ctx context.Context, path []uint32, curve Curve) (*PublicNode, error)

	// SignIdentity asks the device to sign the hidden challenge for the
	// given identity. The visual challenge is shown on the device display;
	// whether it enters the signed digest depends on the curve (it does not
	// for SSH).
	SignIdentity(ctx context.Context, id *identity.Identity, hiddenChallenge []byte, visualChallenge string, curve Curve) (*IdentitySignature, error)

	// GetAddress asks the device to derive the address at path and, when
	// showDisplay is set, present it on its screen for out-of-band
	// confirmation.
	GetAddress(ctx context.Context, path []uint32, coinName string, showDisplay bool) error

	// ClearSession forgets cached session state (PIN, passphrase) on the
	// device.
	ClearSession() error

	// Close releases the connection. The Signer must not be used afterwards.
	Close() error
}
