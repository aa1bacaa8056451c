package soft

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfob-dev/keyfob/internal/bitcoin"
	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/identity"
	"github.com/keyfob-dev/keyfob/internal/signature"
)

// open connects a soft signer against a key file under a temp dir.
func open(t *testing.T) (device.Signer, string) {
	t.Helper()
	keyFile := filepath.Join(t.TempDir(), "master.key")
	signer, err := Connect(context.Background(), device.Options{KeyFile: keyFile})
	require.NoError(t, err)
	t.Cleanup(func() { _ = signer.Close() })
	return signer, keyFile
}

func testIdentity(t *testing.T, s string) *identity.Identity {
	t.Helper()
	id, err := identity.Parse(s)
	require.NoError(t, err)
	return id
}

func TestConnect(t *testing.T) {
	t.Run("requires a key file", func(t *testing.T) {
		_, err := Connect(context.Background(), device.Options{})
		assert.ErrorIs(t, err, errors.ErrKeyFileRequired)
	})

	t.Run("creates the key file with owner-only permissions", func(t *testing.T) {
		_, keyFile := open(t)

		info, err := os.Stat(keyFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		data, err := os.ReadFile(keyFile)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "xprv"))
	})

	t.Run("reloads the same master key across sessions", func(t *testing.T) {
		signer, keyFile := open(t)
		id := testIdentity(t, "ssh://alice@example.com")

		node, err := signer.GetPublicNode(context.Background(), identity.DerivePath(id), device.CurveNISTP256)
		require.NoError(t, err)
		require.NoError(t, signer.Close())

		reopened, err := Connect(context.Background(), device.Options{KeyFile: keyFile})
		require.NoError(t, err)
		defer func() { _ = reopened.Close() }()

		again, err := reopened.GetPublicNode(context.Background(), identity.DerivePath(id), device.CurveNISTP256)
		require.NoError(t, err)
		assert.Equal(t, node.PublicKey, again.PublicKey)
	})

	t.Run("a second session cannot open a locked key file", func(t *testing.T) {
		_, keyFile := open(t)

		_, err := Connect(context.Background(), device.Options{KeyFile: keyFile})
		require.Error(t, err)
	})

	t.Run("rejects a corrupt key file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(keyFile, []byte("not a key\n"), 0o600))

		_, err := Connect(context.Background(), device.Options{KeyFile: keyFile})
		require.Error(t, err)
	})
}

func TestGetPublicNode(t *testing.T) {
	signer, _ := open(t)
	ctx := context.Background()
	path := identity.DerivePath(testIdentity(t, "ssh://git@github.com"))

	t.Run("returns compressed points on both curves", func(t *testing.T) {
		for _, curve := range []device.Curve{device.CurveNISTP256, device.CurveSECP256K1} {
			node, err := signer.GetPublicNode(ctx, path, curve)
			require.NoError(t, err, "curve %s", curve)
			assert.Len(t, node.PublicKey, 33, "curve %s", curve)
		}
	})

	t.Run("curves yield distinct keys for the same path", func(t *testing.T) {
		nist, err := signer.GetPublicNode(ctx, path, device.CurveNISTP256)
		require.NoError(t, err)
		secp, err := signer.GetPublicNode(ctx, path, device.CurveSECP256K1)
		require.NoError(t, err)
		assert.NotEqual(t, nist.PublicKey, secp.PublicKey)
	})

	t.Run("rejects an unknown curve", func(t *testing.T) {
		_, err := signer.GetPublicNode(ctx, path, device.Curve("ed25519"))
		assert.ErrorIs(t, err, errors.ErrUnsupportedCurve)
	})
}

func TestSignIdentity(t *testing.T) {
	signer, _ := open(t)
	ctx := context.Background()

	t.Run("nistp256 signature verifies over the hidden challenge digest", func(t *testing.T) {
		id := testIdentity(t, "ssh://alice@example.com")
		hidden := []byte("ssh challenge bytes")

		result, err := signer.SignIdentity(ctx, id, hidden, "/", device.CurveNISTP256)
		require.NoError(t, err)
		require.Len(t, result.Signature, 65)
		assert.Empty(t, result.Address)

		node, err := signer.GetPublicNode(ctx, identity.DerivePath(id), device.CurveNISTP256)
		require.NoError(t, err)
		assert.Equal(t, node.PublicKey, result.PublicKey)

		sig, err := signature.Extract(result.Signature)
		require.NoError(t, err)
		digest := sha256.Sum256(hidden)
		ok, err := signature.Validate(digest[:], sig, result.PublicKey, device.CurveNISTP256)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("secp256k1 signature verifies over the combined challenge digest", func(t *testing.T) {
		id := testIdentity(t, "https://accounts.example.com")
		hidden := []byte("hidden random bytes")
		visual := "22/08/26 10:00:00"

		result, err := signer.SignIdentity(ctx, id, hidden, visual, device.CurveSECP256K1)
		require.NoError(t, err)
		require.Len(t, result.Signature, 65)
		assert.Equal(t, bitcoin.PubkeyToAddress(result.PublicKey), result.Address)

		sig, err := signature.Extract(result.Signature)
		require.NoError(t, err)
		ok, err := signature.Validate(bitcoin.ChallengeDigest(hidden, visual), sig, result.PublicKey, device.CurveSECP256K1)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("index selects an unrelated key", func(t *testing.T) {
		base := testIdentity(t, "ssh://alice@example.com")
		other := *base
		other.Index = 1

		first, err := signer.GetPublicNode(ctx, identity.DerivePath(base), device.CurveNISTP256)
		require.NoError(t, err)
		second, err := signer.GetPublicNode(ctx, identity.DerivePath(&other), device.CurveNISTP256)
		require.NoError(t, err)
		assert.NotEqual(t, first.PublicKey, second.PublicKey)
	})
}

func TestGetAddress(t *testing.T) {
	signer, _ := open(t)
	path := identity.DerivePath(testIdentity(t, "https://accounts.example.com"))

	assert.NoError(t, signer.GetAddress(context.Background(), path, "Bitcoin", true))
	assert.NoError(t, signer.GetAddress(context.Background(), path, "Bitcoin", false))
}

func TestSessionLifecycle(t *testing.T) {
	signer, _ := open(t)
	path := identity.DerivePath(testIdentity(t, "ssh://example.com"))

	require.NoError(t, signer.ClearSession())
	require.NoError(t, signer.Close())

	_, err := signer.GetPublicNode(context.Background(), path, device.CurveNISTP256)
	assert.ErrorIs(t, err, errors.ErrSessionClosed)

	t.Run("canceled context stops operations", func(t *testing.T) {
		live, _ := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := live.GetPublicNode(ctx, path, device.CurveNISTP256)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRegisteredBackend(t *testing.T) {
	assert.Contains(t, device.Backends(), BackendName)
}
