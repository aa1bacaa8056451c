// Package session composes the identity, challenge, and signature packages
// into the three top-level operations: export a public key, sign an SSH
// challenge, and run the generic Bitcoin-style identity signing flow.
//
// A Session wraps one open signer connection and issues at most one request
// at a time against it. Close releases the connection unconditionally and
// must run on every exit path.
package session

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keyfob-dev/keyfob/internal/bitcoin"
	"github.com/keyfob-dev/keyfob/internal/challenge"
	"github.com/keyfob-dev/keyfob/internal/clock"
	"github.com/keyfob-dev/keyfob/internal/constants"
	"github.com/keyfob-dev/keyfob/internal/device"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/formats"
	"github.com/keyfob-dev/keyfob/internal/identity"
	"github.com/keyfob-dev/keyfob/internal/signature"
)

// Session owns one signer connection for the duration of a request sequence.
type Session struct {
	signer   device.Signer
	sshCurve device.Curve
	clk      clock.Clock
	rand     io.Reader
	logger   zerolog.Logger
}

// Option customizes a Session.
type Option func(*Session)

// WithClock injects the clock used for the visual challenge timestamp.
func WithClock(clk clock.Clock) Option {
	return func(s *Session) { s.clk = clk }
}

// WithRand injects the randomness source for hidden challenges.
func WithRand(r io.Reader) Option {
	return func(s *Session) { s.rand = r }
}

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithSSHCurve overrides the curve used for the SSH operations.
func WithSSHCurve(curve device.Curve) Option {
	return func(s *Session) { s.sshCurve = curve }
}

// New wraps an open signer connection. The caller transfers ownership: the
// session's Close releases the signer.
func New(signer device.Signer, opts ...Option) *Session {
	s := &Session{
		signer:   signer,
		sshCurve: device.CurveNISTP256,
		clk:      clock.RealClock{},
		rand:     rand.Reader,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublicKey exports the identity's SSH public key as an authorized_keys line
// tagged with the identity string.
func (s *Session) PublicKey(ctx context.Context, id *identity.Identity) (string, error) {
	ctx, log := s.begin(ctx, "pubkey", id)
	if err := requireSSH(id); err != nil {
		return "", err
	}

	path := identity.DerivePath(id)
	node, err := s.signer.GetPublicNode(ctx, path, s.sshCurve)
	if err != nil {
		return "", errors.Wrap(err, "fetching public node")
	}

	line, err := formats.ExportPublicKey(node.PublicKey, id.String(), s.sshCurve)
	if err != nil {
		return "", err
	}

	log.Debug().Str("path", identity.FormatPath(path)).Msg("exported public key")
	return line, nil
}

// SignSSHChallenge signs an SSH authentication challenge blob for id.
//
// The raw blob is the hidden challenge; the identity's path component is the
// visual challenge shown on the device display (informational only, never
// part of the signed digest on this curve). When the blob names a public key,
// the signer's answer must serialize to those exact bytes, otherwise the
// request aborts without returning a signature.
func (s *Session) SignSSHChallenge(ctx context.Context, id *identity.Identity, blob []byte) (*signature.Signature, error) {
	ctx, log := s.begin(ctx, "sign-ssh", id)
	if err := requireSSH(id); err != nil {
		return nil, err
	}

	ch, err := challenge.Parse(blob)
	if err != nil {
		return nil, err
	}
	if ch.PublicKey != nil {
		log.Debug().Str("fingerprint", ch.PublicKey.Fingerprint).Str("user", string(ch.User)).Msg("parsed challenge")
	}

	result, err := s.signer.SignIdentity(ctx, id, blob, id.Path, s.sshCurve)
	if err != nil {
		return nil, errors.Wrap(err, "signing ssh challenge")
	}

	if ch.PublicKey != nil {
		vk, err := formats.DecompressPubkey(result.PublicKey, s.sshCurve)
		if err != nil {
			return nil, err
		}
		wire, err := formats.SerializeVerifyingKey(vk)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(wire, ch.PublicKey.Blob) {
			return nil, errors.Wrapf(errors.ErrKeyMismatch,
				"signer answered for a key other than the challenge's %s", ch.PublicKey.Fingerprint)
		}
	}

	sig, err := signature.Extract(result.Signature)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("ssh challenge signed")
	return sig, nil
}

// SignIdentity runs the generic Bitcoin-style signing flow for the identity
// labeled by label at the given index.
//
// With an empty expectedAddress the derived address is shown on the device
// for out-of-band confirmation and no signature is requested. Otherwise the
// device signs a fresh random hidden challenge plus a wall-clock visual
// challenge, and the result is verified end to end: expected address,
// returned address, returned public key, and the signature itself. A failed
// verification is OutcomeInvalid, not an error; integrity mismatches abort.
func (s *Session) SignIdentity(ctx context.Context, label string, index uint32, expectedAddress string) (Outcome, error) {
	id, err := identity.Parse(label)
	if err != nil {
		return OutcomeInvalid, err
	}
	id.Index = index

	ctx, log := s.begin(ctx, "sign-identity", id)

	path := identity.DerivePath(id)
	node, err := s.signer.GetPublicNode(ctx, path, device.CurveSECP256K1)
	if err != nil {
		return OutcomeInvalid, errors.Wrap(err, "fetching public node")
	}
	derived := bitcoin.PubkeyToAddress(node.PublicKey)

	if expectedAddress == "" {
		if err = s.signer.GetAddress(ctx, path, constants.CoinName, true); err != nil {
			return OutcomeInvalid, errors.Wrap(err, "displaying address")
		}
		log.Info().Str("address", derived).Msg("address displayed for confirmation")
		return OutcomeConfirmationDisplayed, nil
	}

	if expectedAddress != derived {
		return OutcomeInvalid, errors.Wrapf(errors.ErrAddressMismatch,
			"expected %s, derived %s", expectedAddress, derived)
	}

	hidden := make([]byte, constants.HiddenChallengeSize)
	if _, err = io.ReadFull(s.rand, hidden); err != nil {
		return OutcomeInvalid, errors.Wrap(err, "generating hidden challenge")
	}
	visual := s.clk.Now().Format(constants.VisualTimeFormat)

	result, err := s.signer.SignIdentity(ctx, id, hidden, visual, device.CurveSECP256K1)
	if err != nil {
		return OutcomeInvalid, errors.Wrap(err, "signing identity challenge")
	}

	if result.Address != derived {
		return OutcomeInvalid, errors.Wrapf(errors.ErrAddressMismatch,
			"signer answered for %s, expected %s", result.Address, derived)
	}
	if !bytes.Equal(result.PublicKey, node.PublicKey) {
		return OutcomeInvalid, errors.Wrap(errors.ErrKeyMismatch, "signer public key changed between requests")
	}

	sig, err := signature.Extract(result.Signature)
	if err != nil {
		return OutcomeInvalid, err
	}

	ok, err := signature.Validate(bitcoin.ChallengeDigest(hidden, visual), sig, result.PublicKey, device.CurveSECP256K1)
	if err != nil {
		return OutcomeInvalid, err
	}
	if !ok {
		log.Warn().Str("address", derived).Msg("signature failed verification")
		return OutcomeInvalid, nil
	}

	log.Info().Str("address", derived).Msg("identity signature verified")
	return OutcomeValid, nil
}

// Close clears the device session and closes the connection. Both always
// run; the first failure is reported.
func (s *Session) Close() error {
	clearErr := s.signer.ClearSession()
	closeErr := s.signer.Close()
	if clearErr != nil {
		return errors.Wrap(clearErr, "clearing device session")
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "closing device connection")
	}
	return nil
}

// begin tags the operation with a request id and attaches the logger to ctx
// so the signer backend logs under the same correlation id.
func (s *Session) begin(ctx context.Context, op string, id *identity.Identity) (context.Context, zerolog.Logger) {
	log := s.logger.With().
		Str("request_id", uuid.NewString()).
		Str("op", op).
		Str("identity", id.String()).
		Logger()
	return log.WithContext(ctx), log
}

// requireSSH rejects identities whose protocol is not ssh.
func requireSSH(id *identity.Identity) error {
	if id.Protocol != identity.ProtocolSSH {
		return errors.Wrapf(errors.ErrProtocolMismatch, "protocol %q, want %q", id.Protocol, identity.ProtocolSSH)
	}
	return nil
}
