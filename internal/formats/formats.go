// Package formats converts public keys between the device's compressed point
// encoding and the SSH wire formats servers expect.
package formats

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/ssh"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// compressedPointLen is the length of a compressed curve point encoding.
const compressedPointLen = 33

// PublicKey is a parsed SSH wire public key: the raw encoded bytes as they
// appeared on the wire plus the derived fingerprint. The key material itself
// is not interpreted here.
type PublicKey struct {
	// Blob is the raw SSH wire encoding of the key.
	Blob []byte

	// Fingerprint is the SHA256 fingerprint in OpenSSH notation.
	Fingerprint string

	// Type is the SSH algorithm name, e.g. "ecdsa-sha2-nistp256".
	Type string
}

// ParsePubkey decodes an SSH wire public key blob. Structurally malformed
// key material is a hard error.
func ParsePubkey(blob []byte) (*PublicKey, error) {
	key, err := ssh.ParsePublicKey(blob)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrPubkeyFormat, "parsing ssh public key: %v", err)
	}

	raw := make([]byte, len(blob))
	copy(raw, blob)
	return &PublicKey{
		Blob:        raw,
		Fingerprint: ssh.FingerprintSHA256(key),
		Type:        key.Type(),
	}, nil
}

// VerifyingKey is a decompressed public key bound to its curve.
type VerifyingKey interface {
	// Verify reports whether (r, s) is a valid raw ECDSA signature over
	// digest. An invalid signature is a normal negative result, not an
	// error.
	Verify(digest []byte, r, s *big.Int) bool
}

// nistKey is a VerifyingKey on the NIST P-256 curve.
type nistKey struct {
	pub *ecdsa.PublicKey
}

func (k nistKey) Verify(digest []byte, r, s *big.Int) bool {
	return ecdsa.Verify(k.pub, digest, r, s)
}

// koblitzKey is a VerifyingKey on secp256k1.
type koblitzKey struct {
	pub *ec.PublicKey
}

func (k koblitzKey) Verify(digest []byte, r, s *big.Int) bool {
	sig := &ec.Signature{R: r, S: s}
	return sig.Verify(digest, k.pub)
}

// DecompressPubkey expands a 33-byte compressed point into a verifying key
// on the given curve. Malformed point encodings are hard errors.
func DecompressPubkey(data []byte, curve device.Curve) (VerifyingKey, error) {
	if len(data) != compressedPointLen {
		return nil, errors.Wrapf(errors.ErrPubkeyFormat, "compressed point must be %d bytes, got %d", compressedPointLen, len(data))
	}

	switch curve {
	case device.CurveNISTP256:
		x, y := elliptic.UnmarshalCompressed(elliptic.P256(), data)
		if x == nil {
			return nil, errors.Wrap(errors.ErrPubkeyFormat, "point not on nistp256")
		}
		return nistKey{pub: &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}}, nil

	case device.CurveSECP256K1:
		pub, err := ec.ParsePubKey(data)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrPubkeyFormat, "point not on secp256k1: %v", err)
		}
		return koblitzKey{pub: pub}, nil

	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedCurve, "curve %q", curve)
	}
}

// SerializeVerifyingKey returns the SSH wire encoding of a verifying key.
// Only the NIST curve has an SSH wire form; Koblitz keys are never sent to
// SSH servers.
func SerializeVerifyingKey(key VerifyingKey) ([]byte, error) {
	nk, ok := key.(nistKey)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnsupportedCurve, "no ssh wire form for this curve")
	}

	sshKey, err := ssh.NewPublicKey(nk.pub)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrPubkeyFormat, "building ssh public key: %v", err)
	}
	return sshKey.Marshal(), nil
}

// ExportPublicKey renders a device public key as an authorized_keys line
// tagged with the identity label as its comment.
func ExportPublicKey(pubkey []byte, label string, curve device.Curve) (string, error) {
	vk, err := DecompressPubkey(pubkey, curve)
	if err != nil {
		return "", err
	}

	nk, ok := vk.(nistKey)
	if !ok {
		return "", errors.Wrap(errors.ErrUnsupportedCurve, "authorized_keys export requires an ssh curve")
	}

	sshKey, err := ssh.NewPublicKey(nk.pub)
	if err != nil {
		return "", errors.Wrapf(errors.ErrPubkeyFormat, "building ssh public key: %v", err)
	}

	line := strings.TrimSuffix(string(ssh.MarshalAuthorizedKey(sshKey)), "\n")
	return line + " " + label + "\n", nil
}
