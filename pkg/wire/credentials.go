package wire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSupported is returned for credential or protocol version
// combinations this package does not implement.
var ErrNotSupported = errors.New("not supported")

// Version is the SNMP protocol version.
type Version uint8

const (
	Version1  Version = 1
	Version2c Version = 2
	Version3  Version = 3
)

// String returns the version name.
func (v Version) String() string {
	switch v {
	case Version1:
		return "v1"
	case Version2c:
		return "v2c"
	case Version3:
		return "v3"
	default:
		return "unknown"
	}
}

// SupportsBulk reports whether GET-BULK exists in this version.
func (v Version) SupportsBulk() bool {
	return v == Version2c || v == Version3
}

// ParseVersion parses "1", "v1", "2c", "v2c", "3" or "v3".
func ParseVersion(s string) (Version, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v") {
	case "1":
		return Version1, nil
	case "2", "2c":
		return Version2c, nil
	case "3":
		return Version3, nil
	default:
		return 0, fmt.Errorf("unknown SNMP version %q (use: v1, v2c, v3)", s)
	}
}

// Credentials is the closed set of credential variants. It is implemented
// by Community and USM.
type Credentials interface {
	// Version returns the protocol version the credentials are valid for.
	Version() Version
	isCredentials()
}

// Community is the shared-secret credential used by SNMPv1 and SNMPv2c.
type Community struct {
	Secret  string
	version Version
}

func (Community) isCredentials() {}

// Version returns Version1 or Version2c.
func (c Community) Version() Version {
	return c.version
}

// String hides the secret.
func (c Community) String() string {
	return fmt.Sprintf("community(%s)", c.version)
}

// USM describes SNMPv3 user-based security. Engines in this module do not
// implement it; NewCredentials refuses to build it.
type USM struct {
	User         string
	AuthProtocol string
	AuthKey      string
	PrivProtocol string
	PrivKey      string
}

func (USM) isCredentials() {}

// Version returns Version3.
func (USM) Version() Version {
	return Version3
}

// NewCommunity builds community credentials for v1 or v2c.
func NewCommunity(version Version, secret string) (Community, error) {
	switch version {
	case Version1, Version2c:
		return Community{Secret: secret, version: version}, nil
	default:
		return Community{}, fmt.Errorf("community credentials for %s: %w", version, ErrNotSupported)
	}
}

// NewCredentials builds credentials for the given version from a shared
// secret. Version3 fails fast with ErrNotSupported.
func NewCredentials(version Version, secret string) (Credentials, error) {
	switch version {
	case Version1, Version2c:
		return NewCommunity(version, secret)
	case Version3:
		return nil, fmt.Errorf("SNMPv3 user-based security: %w", ErrNotSupported)
	default:
		return nil, fmt.Errorf("SNMP version %d: %w", version, ErrNotSupported)
	}
}
