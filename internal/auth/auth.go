// Package auth implements the optional ingestion-boundary credential checks.
// Policies are configuration-gated, independent, and stackable; every
// comparison is constant time.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

// Policy authorizes an inbound request. Implementations must not distinguish
// between absent, malformed, and mismatched credentials in their result.
type Policy interface {
	Authorize(r *http.Request) bool
}

// Chain evaluates policies in order; all configured policies must pass. An
// empty chain accepts every request.
type Chain []Policy

// Authorize reports whether every policy in the chain accepts the request.
func (c Chain) Authorize(r *http.Request) bool {
	for _, p := range c {
		if !p.Authorize(r) {
			return false
		}
	}
	return true
}

// TokenPolicy requires a shared-secret access_token query parameter.
type TokenPolicy struct {
	token string
}

// NewTokenPolicy builds a TokenPolicy for the configured shared secret.
func NewTokenPolicy(token string) *TokenPolicy {
	return &TokenPolicy{token: token}
}

func (p *TokenPolicy) Authorize(r *http.Request) bool {
	supplied := r.URL.Query().Get("access_token")
	return constantTimeEquals(supplied, p.token)
}

// BasicPolicy requires a standard basic-auth header with the configured
// username and password. A malformed header (wrong scheme, bad encoding,
// missing delimiter) is treated identically to a credential mismatch.
type BasicPolicy struct {
	username string
	password string
}

// NewBasicPolicy builds a BasicPolicy for the configured credentials.
func NewBasicPolicy(username, password string) *BasicPolicy {
	return &BasicPolicy{username: username, password: password}
}

func (p *BasicPolicy) Authorize(r *http.Request) bool {
	user, pass, ok := decodeBasicHeader(r.Header.Get("Authorization"))
	if !ok {
		return false
	}
	// Evaluate both comparisons so a username mismatch does not short-circuit
	// the password check.
	userOK := constantTimeEquals(user, p.username)
	passOK := constantTimeEquals(pass, p.password)
	return userOK && passOK
}

func decodeBasicHeader(header string) (user, pass string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return user, pass, true
}

// constantTimeEquals compares two strings without leaking timing information.
// Hashing first ensures inputs of different lengths take the same time as
// same-length mismatches.
func constantTimeEquals(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
