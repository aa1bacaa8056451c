// Package signature post-processes and validates the raw signature blobs a
// signing device returns.
package signature

import (
	"math/big"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/formats"
)

const (
	// BlobSize is the exact length of a device signature blob: one marker
	// byte followed by 32-byte big-endian r and s values.
	BlobSize = 65

	// scalarSize is the byte length of each signature scalar.
	scalarSize = 32
)

// Signature is a raw ECDSA (r, s) pair.
type Signature struct {
	R *big.Int
	S *big.Int
}

// Extract splits a device signature blob into its (r, s) pair. The blob must
// be exactly 65 bytes with a zero marker byte; anything else is
// ErrSignatureShape.
func Extract(blob []byte) (*Signature, error) {
	if len(blob) != BlobSize {
		return nil, errors.Wrapf(errors.ErrSignatureShape, "expected %d bytes, got %d", BlobSize, len(blob))
	}
	if blob[0] != 0 {
		return nil, errors.Wrapf(errors.ErrSignatureShape, "nonzero marker byte 0x%02x", blob[0])
	}

	return &Signature{
		R: new(big.Int).SetBytes(blob[1 : 1+scalarSize]),
		S: new(big.Int).SetBytes(blob[1+scalarSize:]),
	}, nil
}

// Validate reports whether sig verifies digest under the compressed public
// key on the given curve. A cryptographically invalid signature is the
// expected negative case and returns (false, nil); structurally malformed
// public key material is a hard error.
func Validate(digest []byte, sig *Signature, pubkey []byte, curve device.Curve) (bool, error) {
	vk, err := formats.DecompressPubkey(pubkey, curve)
	if err != nil {
		return false, err
	}
	return vk.Verify(digest, sig.R, sig.S), nil
}
