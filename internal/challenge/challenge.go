// Package challenge decodes SSH authentication challenge blobs: the
// length-prefixed field sequence an SSH server sends for signing.
//
// Each field is a 4-byte big-endian length followed by that many raw bytes
// (standard SSH string framing). Two standalone reserved bytes sit at fixed
// positions in the sequence and are skipped without interpretation. The
// decoded record is used only to build the user confirmation message and to
// cross-check the public key the signer answers with.
package challenge

import (
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/formats"
)

// Challenge is the decoded form of an SSH signature request blob.
// All fields are absent (nil) for an empty blob, which represents a
// public-key-only query with no signing requested.
type Challenge struct {
	Nonce     []byte
	User      []byte
	Conn      []byte
	Auth      []byte
	KeyType   []byte
	PublicKey *formats.PublicKey
}

// Parse decodes a challenge blob. It fails with ErrMalformedBlob when any
// frame runs past the end of the buffer or when bytes remain after the last
// field.
func Parse(blob []byte) (*Challenge, error) {
	ch := &Challenge{}
	if len(blob) == 0 {
		return ch, nil
	}

	r := reader{buf: blob}
	var err error
	if ch.Nonce, err = r.frame(); err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	if err = r.skip(1); err != nil {
		return nil, err
	}
	if ch.User, err = r.frame(); err != nil {
		return nil, errors.Wrap(err, "user")
	}
	if ch.Conn, err = r.frame(); err != nil {
		return nil, errors.Wrap(err, "conn")
	}
	if ch.Auth, err = r.frame(); err != nil {
		return nil, errors.Wrap(err, "auth")
	}
	if err = r.skip(1); err != nil {
		return nil, err
	}
	if ch.KeyType, err = r.frame(); err != nil {
		return nil, errors.Wrap(err, "key type")
	}

	pubkeyBlob, err := r.frame()
	if err != nil {
		return nil, errors.Wrap(err, "public key")
	}
	if ch.PublicKey, err = formats.ParsePubkey(pubkeyBlob); err != nil {
		return nil, err
	}

	if r.remaining() != 0 {
		return nil, errors.Wrapf(errors.ErrMalformedBlob, "%d trailing bytes after last field", r.remaining())
	}
	return ch, nil
}
