package formats

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"strings"
	"testing"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// newNISTKey generates a P-256 keypair and its compressed point encoding.
func newNISTKey(t *testing.T) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return priv, elliptic.MarshalCompressed(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y)
}

// newKoblitzPubkey derives a deterministic secp256k1 compressed public key.
func newKoblitzPubkey(t *testing.T) []byte {
	t.Helper()
	seed := make([]byte, 32)
	seed[0] = 0x42
	master, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	require.NoError(t, err)
	pub, err := master.ECPubKey()
	require.NoError(t, err)
	return pub.Compressed()
}

func TestDecompressPubkey_NISTP256(t *testing.T) {
	priv, compressed := newNISTKey(t)

	vk, err := DecompressPubkey(compressed, device.CurveNISTP256)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("challenge"))
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	assert.True(t, vk.Verify(digest[:], r, s))

	other := sha256.Sum256([]byte("different"))
	assert.False(t, vk.Verify(other[:], r, s))
}

func TestDecompressPubkey_SECP256K1(t *testing.T) {
	compressed := newKoblitzPubkey(t)

	vk, err := DecompressPubkey(compressed, device.CurveSECP256K1)
	require.NoError(t, err)
	assert.NotNil(t, vk)
}

func TestDecompressPubkey_Errors(t *testing.T) {
	_, compressed := newNISTKey(t)

	t.Run("wrong length", func(t *testing.T) {
		_, err := DecompressPubkey(compressed[:16], device.CurveNISTP256)
		assert.ErrorIs(t, err, errors.ErrPubkeyFormat)
	})

	t.Run("point not on curve", func(t *testing.T) {
		bad := make([]byte, len(compressed))
		copy(bad, compressed)
		bad[0] = 0x07 // invalid prefix byte
		_, err := DecompressPubkey(bad, device.CurveNISTP256)
		assert.ErrorIs(t, err, errors.ErrPubkeyFormat)
	})

	t.Run("unknown curve", func(t *testing.T) {
		_, err := DecompressPubkey(compressed, device.Curve("ed25519"))
		assert.ErrorIs(t, err, errors.ErrUnsupportedCurve)
	})
}

func TestSerializeVerifyingKey_RoundTripsThroughParsePubkey(t *testing.T) {
	_, compressed := newNISTKey(t)

	vk, err := DecompressPubkey(compressed, device.CurveNISTP256)
	require.NoError(t, err)

	wire, err := SerializeVerifyingKey(vk)
	require.NoError(t, err)

	parsed, err := ParsePubkey(wire)
	require.NoError(t, err)
	assert.Equal(t, wire, parsed.Blob)
	assert.Equal(t, "ecdsa-sha2-nistp256", parsed.Type)
	assert.True(t, strings.HasPrefix(parsed.Fingerprint, "SHA256:"))
}

func TestSerializeVerifyingKey_KoblitzHasNoWireForm(t *testing.T) {
	vk, err := DecompressPubkey(newKoblitzPubkey(t), device.CurveSECP256K1)
	require.NoError(t, err)

	_, err = SerializeVerifyingKey(vk)
	assert.ErrorIs(t, err, errors.ErrUnsupportedCurve)
}

func TestParsePubkey_Malformed(t *testing.T) {
	_, err := ParsePubkey([]byte("not an ssh key"))
	assert.ErrorIs(t, err, errors.ErrPubkeyFormat)
}

func TestExportPublicKey(t *testing.T) {
	_, compressed := newNISTKey(t)

	line, err := ExportPublicKey(compressed, "ssh://alice@example.com", device.CurveNISTP256)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(line, "ecdsa-sha2-nistp256 "))
	assert.True(t, strings.HasSuffix(line, " ssh://alice@example.com\n"))
	assert.Equal(t, 3, len(strings.Fields(line)), "type, key material, label")
}

func TestExportPublicKey_RejectsKoblitz(t *testing.T) {
	_, err := ExportPublicKey(newKoblitzPubkey(t), "example.com", device.CurveSECP256K1)
	assert.ErrorIs(t, err, errors.ErrUnsupportedCurve)
}
