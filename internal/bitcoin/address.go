// Package bitcoin provides the Bitcoin-style helpers used by the generic
// identity signing flow: P2PKH address derivation and the Electrum
// signed-message digest.
package bitcoin

import (
	"crypto/sha256"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // P2PKH addresses require RIPEMD-160
)

// addressVersion is the mainnet P2PKH version byte.
const addressVersion = 0x00

// checksumLen is the number of double-SHA-256 bytes appended to the payload.
const checksumLen = 4

// PubkeyToAddress returns the mainnet P2PKH address for a serialized public
// key: Base58Check over version byte || RIPEMD-160(SHA-256(pubkey)).
func PubkeyToAddress(pubkey []byte) string {
	sha := sha256.Sum256(pubkey)
	rip := ripemd160.New()
	rip.Write(sha[:])

	payload := append([]byte{addressVersion}, rip.Sum(nil)...)
	check := doubleSHA256(payload)
	return base58.Encode(append(payload, check[:checksumLen]...))
}

// doubleSHA256 is SHA-256 applied twice, Bitcoin's workhorse digest.
func doubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}
