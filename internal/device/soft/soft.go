// Package soft implements a software signer backend on top of a BIP32 master
// key stored in a local file. It exists so every keyfob flow can run end to
// end without hardware attached; the key file carries none of a hardware
// device's tamper resistance and the backend says so at session open.
package soft

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/hkdf"

	"github.com/keyfob-dev/keyfob/internal/bitcoin"
	"github.com/keyfob-dev/keyfob/internal/ctxutil"
	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/flock"
	"github.com/keyfob-dev/keyfob/internal/identity"
)

// BackendName selects this backend in configuration.
const BackendName = "soft"

// nistKeyInfo labels the HKDF expansion that maps a secp256k1 node secret to
// a NIST P-256 scalar. Changing it changes every derived SSH key.
const nistKeyInfo = "keyfob nistp256 node key"

func init() { //nolint:gochecknoinits // Backend self-registration
	device.MustRegister(BackendName, Connect)
}

// Signer is a software signer session backed by a BIP32 master key file.
// An exclusive lock on a sidecar of the key file is held for the session
// lifetime so concurrent invocations never race on first-use key generation.
type Signer struct {
	master   *bip32.ExtendedKey
	lockFile *os.File
	closed   bool
}

// Connect opens a soft signer session. The master key is read from
// opts.KeyFile, created on first use with mode 0600.
func Connect(ctx context.Context, opts device.Options) (device.Signer, error) {
	if opts.KeyFile == "" {
		return nil, errors.Wrap(errors.ErrKeyFileRequired, "soft backend")
	}

	lockFile, err := acquireKeyLock(opts.KeyFile)
	if err != nil {
		return nil, err
	}

	master, err := loadOrCreateMaster(opts.KeyFile)
	if err != nil {
		releaseKeyLock(lockFile)
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("backend", BackendName).
		Str("key_file", opts.KeyFile).
		Msg("opened software signer session; key material is file-backed, not hardware-protected")
	return &Signer{master: master, lockFile: lockFile}, nil
}

// acquireKeyLock takes the exclusive session lock on the key file's sidecar.
func acquireKeyLock(keyFile string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(keyFile), 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating key directory for %s", keyFile)
	}

	lockPath := keyFile + ".lock"
	f, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // Path comes from user configuration
	if err != nil {
		return nil, errors.Wrapf(err, "opening lock file %s", lockPath)
	}
	if err = flock.Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "master key %s is locked by another session", keyFile)
	}
	return f, nil
}

// releaseKeyLock drops the session lock.
func releaseKeyLock(f *os.File) {
	if f == nil {
		return
	}
	_ = flock.Unlock(f.Fd())
	_ = f.Close()
}

// loadOrCreateMaster reads the serialized master key, generating and
// persisting a fresh one when the file does not exist yet.
func loadOrCreateMaster(keyFile string) (*bip32.ExtendedKey, error) {
	data, err := os.ReadFile(keyFile) //nolint:gosec // Path comes from user configuration
	if err == nil {
		master, parseErr := bip32.NewKeyFromString(strings.TrimSpace(string(data)))
		if parseErr != nil {
			return nil, errors.Wrapf(parseErr, "parsing master key file %s", keyFile)
		}
		return master, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "reading master key file %s", keyFile)
	}

	seed, err := bip32.GenerateSeed(bip32.RecommendedSeedLen)
	if err != nil {
		return nil, errors.Wrap(err, "generating master seed")
	}
	master, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	if err != nil {
		return nil, errors.Wrap(err, "building master key")
	}

	if err = os.WriteFile(keyFile, []byte(master.String()+"\n"), 0o600); err != nil {
		return nil, errors.Wrapf(err, "writing master key file %s", keyFile)
	}
	return master, nil
}

// derive walks the child chain from the master key along path.
func (s *Signer) derive(path []uint32) (*bip32.ExtendedKey, error) {
	node := s.master
	var err error
	for _, elem := range path {
		if node, err = node.Child(elem); err != nil {
			return nil, errors.Wrapf(err, "deriving path element %d", elem)
		}
	}
	return node, nil
}

// nistKeyAt maps the secp256k1 node secret at path to a deterministic NIST
// P-256 private key via HKDF-SHA256. The scalar is reduced into [1, N-1] so
// the result is always a valid key.
func (s *Signer) nistKeyAt(path []uint32) (*ecdsa.PrivateKey, error) {
	node, err := s.derive(path)
	if err != nil {
		return nil, err
	}
	secret, err := node.ECPrivKey()
	if err != nil {
		return nil, errors.Wrap(err, "extracting node secret")
	}

	buf := make([]byte, 32)
	if _, err = io.ReadFull(hkdf.New(sha256.New, secret.Serialize(), nil, []byte(nistKeyInfo)), buf); err != nil {
		return nil, errors.Wrap(err, "expanding nistp256 scalar")
	}

	curve := elliptic.P256()
	one := big.NewInt(1)
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, new(big.Int).Sub(curve.Params().N, one))
	k.Add(k, one)

	priv := &ecdsa.PrivateKey{D: k}
	priv.PublicKey.Curve = curve
	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(k.Bytes())
	return priv, nil
}

// GetPublicNode returns the compressed public key at path on the given curve.
func (s *Signer) GetPublicNode(ctx context.Context, path []uint32, curve device.Curve) (*device.PublicNode, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	switch curve {
	case device.CurveSECP256K1:
		node, err := s.derive(path)
		if err != nil {
			return nil, err
		}
		pub, err := node.ECPubKey()
		if err != nil {
			return nil, errors.Wrap(err, "extracting node public key")
		}
		return &device.PublicNode{PublicKey: pub.Compressed()}, nil

	case device.CurveNISTP256:
		priv, err := s.nistKeyAt(path)
		if err != nil {
			return nil, err
		}
		return &device.PublicNode{
			PublicKey: elliptic.MarshalCompressed(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y),
		}, nil

	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedCurve, "curve %q", curve)
	}
}

// SignIdentity signs the challenge for id at its derived path. The visual
// challenge goes to the log in place of a hardware display.
func (s *Signer) SignIdentity(ctx context.Context, id *identity.Identity, hiddenChallenge []byte, visualChallenge string, curve device.Curve) (*device.IdentitySignature, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	path := identity.DerivePath(id)
	zerolog.Ctx(ctx).Info().
		Str("identity", id.String()).
		Str("visual_challenge", visualChallenge).
		Str("path", identity.FormatPath(path)).
		Msg("confirm signing request")

	switch curve {
	case device.CurveSECP256K1:
		node, err := s.derive(path)
		if err != nil {
			return nil, err
		}
		priv, err := node.ECPrivKey()
		if err != nil {
			return nil, errors.Wrap(err, "extracting node secret")
		}

		digest := bitcoin.ChallengeDigest(hiddenChallenge, visualChallenge)
		sig, err := priv.Sign(digest)
		if err != nil {
			return nil, errors.Wrap(err, "signing challenge digest")
		}

		pubkey := priv.PubKey().Compressed()
		return &device.IdentitySignature{
			PublicKey: pubkey,
			Signature: packSignature(sig.R, sig.S),
			Address:   bitcoin.PubkeyToAddress(pubkey),
		}, nil

	case device.CurveNISTP256:
		priv, err := s.nistKeyAt(path)
		if err != nil {
			return nil, err
		}

		// The visual challenge is display-only on this curve.
		digest := sha256.Sum256(hiddenChallenge)
		r, sv, err := ecdsa.Sign(rand.Reader, priv, digest[:])
		if err != nil {
			return nil, errors.Wrap(err, "signing challenge digest")
		}

		return &device.IdentitySignature{
			PublicKey: elliptic.MarshalCompressed(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y),
			Signature: packSignature(r, sv),
		}, nil

	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedCurve, "curve %q", curve)
	}
}

// GetAddress derives the address at path and, when showDisplay is set, logs
// it in place of a hardware display.
func (s *Signer) GetAddress(ctx context.Context, path []uint32, coinName string, showDisplay bool) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	node, err := s.derive(path)
	if err != nil {
		return err
	}
	pub, err := node.ECPubKey()
	if err != nil {
		return errors.Wrap(err, "extracting node public key")
	}

	if showDisplay {
		zerolog.Ctx(ctx).Info().
			Str("coin", coinName).
			Str("path", identity.FormatPath(path)).
			Str("address", bitcoin.PubkeyToAddress(pub.Compressed())).
			Msg("confirm address")
	}
	return nil
}

// ClearSession is a no-op: the soft backend caches no PIN or passphrase.
func (s *Signer) ClearSession() error {
	return nil
}

// Close drops the master key reference and releases the session lock.
// The session is unusable afterwards.
func (s *Signer) Close() error {
	s.master = nil
	s.closed = true
	releaseKeyLock(s.lockFile)
	s.lockFile = nil
	return nil
}

// check guards every operation against a closed session or canceled context.
func (s *Signer) check(ctx context.Context) error {
	if s.closed {
		return errors.Wrap(errors.ErrSessionClosed, "soft signer")
	}
	return ctxutil.Canceled(ctx)
}

// packSignature builds the 65-byte signature blob: zero marker byte followed
// by 32-byte big-endian r and s.
func packSignature(r, s *big.Int) []byte {
	blob := make([]byte, 65)
	r.FillBytes(blob[1:33])
	s.FillBytes(blob[33:65])
	return blob
}
