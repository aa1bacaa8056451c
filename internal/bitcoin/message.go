package bitcoin

import (
	"crypto/sha256"
	"encoding/binary"
)

// messageMagic prefixes every signed message, length byte included, exactly
// as Bitcoin wallets frame it on the wire.
const messageMagic = "\x18Bitcoin Signed Message:\n"

// MessageHash computes the Electrum-style signed-message digest of msg:
// double SHA-256 over magic || compactSize(len(msg)) || msg.
func MessageHash(msg []byte) []byte {
	buf := make([]byte, 0, len(messageMagic)+9+len(msg))
	buf = append(buf, messageMagic...)
	buf = appendCompactSize(buf, uint64(len(msg)))
	buf = append(buf, msg...)
	return doubleSHA256(buf)
}

// ChallengeDigest is the digest signed in the generic identity flow:
// MessageHash over the concatenated SHA-256 digests of the hidden and visual
// challenges.
func ChallengeDigest(hidden []byte, visual string) []byte {
	h := sha256.Sum256(hidden)
	v := sha256.Sum256([]byte(visual))
	return MessageHash(append(h[:], v[:]...))
}

// appendCompactSize appends n in Bitcoin's variable-length integer encoding.
func appendCompactSize(buf []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xfd)
		return binary.LittleEndian.AppendUint16(buf, uint16(n))
	case n <= 0xffffffff:
		buf = append(buf, 0xfe)
		return binary.LittleEndian.AppendUint32(buf, uint32(n))
	default:
		buf = append(buf, 0xff)
		return binary.LittleEndian.AppendUint64(buf, n)
	}
}
