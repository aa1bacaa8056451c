package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
)

// pathNamespace is the fixed first element of every derived key path. It
// identifies this application's key space on the device; the four elements
// after it come from the identity digest.
const pathNamespace = 13

// DerivePath computes the hardened derivation path for id.
//
// The address seed is the little-endian encoding of id.Index followed by the
// ASCII bytes of the identity string. The first 16 bytes of its SHA-256
// digest, read as four little-endian uint32 values, form the variable part
// of the path. Every element, the namespace included, carries the hardened
// bit, so the device only ever uses non-public derivation for these keys.
//
// The mapping is pure: the same identity string and index always yield the
// same path, which is how the device reproduces a key across sessions
// without storing any per-identity state. Identities differing only by
// index land on unrelated paths by hash avalanche.
func DerivePath(id *Identity) []uint32 {
	label := id.String()
	seed := make([]byte, 4, 4+len(label))
	binary.LittleEndian.PutUint32(seed, id.Index)
	seed = append(seed, label...)
	digest := sha256.Sum256(seed)

	path := make([]uint32, 0, 5)
	path = append(path, hardened(pathNamespace))
	for i := 0; i < 16; i += 4 {
		path = append(path, hardened(binary.LittleEndian.Uint32(digest[i:i+4])))
	}
	return path
}

// hardened sets the hardened-derivation bit on a path element.
func hardened(v uint32) uint32 {
	return v | bip32.HardenedKeyStart
}

// FormatPath renders a key path in the conventional m/i'/j'/... notation,
// marking hardened elements with an apostrophe.
func FormatPath(path []uint32) string {
	var b strings.Builder
	b.WriteString("m")
	for _, p := range path {
		if p&bip32.HardenedKeyStart != 0 {
			fmt.Fprintf(&b, "/%d'", p&^uint32(bip32.HardenedKeyStart))
		} else {
			fmt.Fprintf(&b, "/%d", p)
		}
	}
	return b.String()
}
