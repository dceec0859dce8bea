// Package auth implements the pre-shared-key gate applied to every query.
//
// Clients do not send the PSK itself: they prepend the hex SHA-256 digest of
// the PSK to the search term, with no separator. The gate checks that exact
// prefix and strips it. The prefix comparison is not constant-time; the
// token is a fixed-length digest rather than the raw secret.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DigestPSK returns the hex SHA-256 digest a client must prepend to its
// queries for the given PSK.
func DigestPSK(psk string) string {
	sum := sha256.Sum256([]byte(psk))
	return hex.EncodeToString(sum[:])
}

// Gate validates the PSK digest prefix on incoming queries.
type Gate struct {
	enabled bool
	token   string
}

// NewGate builds a gate for the configured PSK. With enabled false the gate
// passes every query through unchanged.
func NewGate(enabled bool, psk string) *Gate {
	g := &Gate{enabled: enabled}
	if enabled {
		g.token = DigestPSK(psk)
	}
	return g
}

// Authenticate checks raw for the expected digest prefix. When the gate is
// disabled the raw query is returned unchanged with ok = true. When enabled,
// a matching prefix is stripped and the remainder returned as the term;
// otherwise ok is false.
func (g *Gate) Authenticate(raw string) (string, bool) {
	if !g.enabled {
		return raw, true
	}
	if !strings.HasPrefix(raw, g.token) {
		return "", false
	}
	return strings.TrimPrefix(raw, g.token), true
}

// Enabled reports whether PSK authentication is on.
func (g *Gate) Enabled() bool {
	return g.enabled
}
