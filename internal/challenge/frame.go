package challenge

import (
	"encoding/binary"

	"github.com/keyfob-dev/keyfob/internal/errors"
)

// lenPrefixSize is the size of the big-endian length prefix on every frame.
const lenPrefixSize = 4

// reader consumes length-prefixed frames from a challenge blob.
type reader struct {
	buf []byte
	off int
}

// frame reads one length-prefixed field.
func (r *reader) frame() ([]byte, error) {
	if r.remaining() < lenPrefixSize {
		return nil, errors.Wrap(errors.ErrMalformedBlob, "truncated length prefix")
	}
	n := int(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += lenPrefixSize

	if r.remaining() < n {
		return nil, errors.Wrapf(errors.ErrMalformedBlob, "frame of %d bytes exceeds %d remaining", n, r.remaining())
	}
	frame := r.buf[r.off : r.off+n]
	r.off += n
	return frame, nil
}

// skip advances past n reserved bytes.
func (r *reader) skip(n int) error {
	if r.remaining() < n {
		return errors.Wrap(errors.ErrMalformedBlob, "truncated reserved byte")
	}
	r.off += n
	return nil
}

// remaining reports how many bytes are left unconsumed.
func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

// AppendFrame appends one length-prefixed field to buf. Tests and agent
// integrations use it to build challenge blobs bit-exactly.
func AppendFrame(buf, field []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}
