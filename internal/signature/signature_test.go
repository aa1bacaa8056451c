package signature

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"testing"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

func TestExtract(t *testing.T) {
	t.Run("all-zero blob yields r=0 s=0", func(t *testing.T) {
		sig, err := Extract(make([]byte, BlobSize))
		require.NoError(t, err)
		assert.Zero(t, sig.R.Sign())
		assert.Zero(t, sig.S.Sign())
	})

	t.Run("scalars are big-endian and bounded", func(t *testing.T) {
		blob := make([]byte, BlobSize)
		for i := 1; i < BlobSize; i++ {
			blob[i] = 0xff
		}
		sig, err := Extract(blob)
		require.NoError(t, err)
		assert.LessOrEqual(t, sig.R.BitLen(), 256)
		assert.LessOrEqual(t, sig.S.BitLen(), 256)

		blob = make([]byte, BlobSize)
		blob[32] = 0x01 // lowest byte of r
		blob[64] = 0x02 // lowest byte of s
		sig, err = Extract(blob)
		require.NoError(t, err)
		assert.Equal(t, int64(1), sig.R.Int64())
		assert.Equal(t, int64(2), sig.S.Int64())
	})

	t.Run("rejects wrong lengths", func(t *testing.T) {
		for _, n := range []int{0, 1, 64, 66, 130} {
			_, err := Extract(make([]byte, n))
			assert.ErrorIs(t, err, errors.ErrSignatureShape, "length %d", n)
		}
	})

	t.Run("rejects nonzero marker byte", func(t *testing.T) {
		blob := make([]byte, BlobSize)
		blob[0] = 0x1b
		_, err := Extract(blob)
		assert.ErrorIs(t, err, errors.ErrSignatureShape)
	})
}

// signBlob packs (r, s) into the device's 65-byte wire form.
func signBlob(t *testing.T, r, s interface{ FillBytes([]byte) []byte }) []byte {
	t.Helper()
	blob := make([]byte, BlobSize)
	r.FillBytes(blob[1:33])
	s.FillBytes(blob[33:65])
	return blob
}

func TestValidate_NISTP256(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pubkey := elliptic.MarshalCompressed(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y)

	digest := sha256.Sum256([]byte("ssh challenge"))
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	require.NoError(t, err)

	sig, err := Extract(signBlob(t, r, s))
	require.NoError(t, err)

	t.Run("valid signature verifies", func(t *testing.T) {
		ok, err := Validate(digest[:], sig, pubkey, device.CurveNISTP256)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong digest is a negative result, not an error", func(t *testing.T) {
		other := sha256.Sum256([]byte("tampered"))
		ok, err := Validate(other[:], sig, pubkey, device.CurveNISTP256)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("zero signature never verifies a nonzero digest", func(t *testing.T) {
		zero, err := Extract(make([]byte, BlobSize))
		require.NoError(t, err)
		ok, err := Validate(digest[:], zero, pubkey, device.CurveNISTP256)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed public key is a hard error", func(t *testing.T) {
		_, err := Validate(digest[:], sig, pubkey[:10], device.CurveNISTP256)
		assert.ErrorIs(t, err, errors.ErrPubkeyFormat)
	})
}

func TestValidate_SECP256K1(t *testing.T) {
	seed := bytes.Repeat([]byte{0x51}, 32)
	master, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	require.NoError(t, err)
	priv, err := master.ECPrivKey()
	require.NoError(t, err)
	pub, err := master.ECPubKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("identity challenge"))
	ecSig, err := priv.Sign(digest[:])
	require.NoError(t, err)

	sig, err := Extract(signBlob(t, ecSig.R, ecSig.S))
	require.NoError(t, err)

	t.Run("valid signature verifies", func(t *testing.T) {
		ok, err := Validate(digest[:], sig, pub.Compressed(), device.CurveSECP256K1)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tampered digest fails verification", func(t *testing.T) {
		other := sha256.Sum256([]byte("other"))
		ok, err := Validate(other[:], sig, pub.Compressed(), device.CurveSECP256K1)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
