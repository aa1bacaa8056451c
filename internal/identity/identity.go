// Package identity maps human-readable identity strings to structured
// authentication targets and to the deterministic hardened key paths the
// signing device derives keys from.
//
// The string grammar is [proto://][user@]host[:port][/path]. No escaping is
// performed: inputs must not contain the delimiter characters except where
// they form the grammar's own structure.
package identity

import (
	"regexp"
	"strings"

	"github.com/keyfob-dev/keyfob/internal/errors"
)

// ProtocolSSH is the protocol value required by the SSH operations.
const ProtocolSSH = "ssh"

// identityPattern is the anchored identity grammar. The host capture is
// non-greedy so the port and path captures win ties.
var identityPattern = regexp.MustCompile(
	`^(?:(?P<proto>.*)://)?(?:(?P<user>.*)@)?(?P<host>.*?)(?::(?P<port>\w*))?(?P<path>/.*)?$`)

// Identity describes one authentication target.
//
// Optional fields are absent when empty. Absence is significant: the string
// form omits absent fields entirely, and the key path is derived from that
// string, so callers must never fabricate empty values.
type Identity struct {
	// Protocol is the scheme prefix, e.g. "ssh". Optional.
	Protocol string

	// User is the login name. Optional.
	User string

	// Host is the authentication target. Required.
	Host string

	// Port is kept as a string: it is an opaque label in the key derivation,
	// never dialed. Optional.
	Port string

	// Path includes the leading slash. Optional.
	Path string

	// Index disambiguates multiple independent credentials for the same
	// host. It is not part of the string form and must be carried out of
	// band by the caller. Defaults to 0.
	Index uint32
}

// Parse decodes an identity string. Empty captures are treated as absent,
// not as empty strings. Index is left at 0; callers supply it separately.
func Parse(s string) (*Identity, error) {
	m := identityPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, errors.Wrapf(errors.ErrIdentityParse, "parsing %q", s)
	}

	id := &Identity{
		Protocol: m[identityPattern.SubexpIndex("proto")],
		User:     m[identityPattern.SubexpIndex("user")],
		Host:     m[identityPattern.SubexpIndex("host")],
		Port:     m[identityPattern.SubexpIndex("port")],
		Path:     m[identityPattern.SubexpIndex("path")],
	}
	if id.Host == "" {
		return nil, errors.Wrapf(errors.ErrIdentityParse, "no host in %q", s)
	}
	return id, nil
}

// String is the exact inverse of Parse: it emits each optional field only
// when present, in the order proto, user, host, port, path. The result of
// parsing the returned string is the same identity (Index excluded).
func (id *Identity) String() string {
	var b strings.Builder
	if id.Protocol != "" {
		b.WriteString(id.Protocol)
		b.WriteString("://")
	}
	if id.User != "" {
		b.WriteString(id.User)
		b.WriteString("@")
	}
	b.WriteString(id.Host)
	if id.Port != "" {
		b.WriteString(":")
		b.WriteString(id.Port)
	}
	b.WriteString(id.Path)
	return b.String()
}
