// Package requestid mints opaque, tamper-evident correlation tokens for
// Internal errors crossing the gRPC boundary. The raw error text never
// leaves the process; only the signed token does, so an operator can
// grep server logs for the same token a caller reports without the
// token itself revealing anything about the failure.
package requestid

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrEmptyKey is returned when a Signer is built with no key material.
var ErrEmptyKey = errors.New("requestid: signing key must not be empty")

// tokenLen is the number of hex characters kept from the full BLAKE2b
// digest. 16 hex chars (64 bits) is ample collision resistance for a
// log-correlation token; the full digest would be unwieldy in an error
// message.
const tokenLen = 16

// Signer derives a correlation token from a request identifier using a
// keyed BLAKE2b hash. Unlike HMAC-SHA256, BLAKE2b's keyed mode is a MAC
// construction built into the hash itself, with no separate library
// required beyond golang.org/x/crypto.
type Signer struct {
	key []byte
}

// New builds a Signer from the given key. The key should be a stable,
// process-wide secret (e.g. loaded from the same secret store as the
// service's JWT signing key); it is never transmitted anywhere.
func New(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return &Signer{key: key}, nil
}

// Sign derives a short correlation token for the given request ID. The
// result is deterministic for a given (key, id) pair, so the same token
// appears in both the caller-facing error and the server's log line.
func (s *Signer) Sign(requestID string) (string, error) {
	h, err := blake2b.New256(s.key)
	if err != nil {
		return "", fmt.Errorf("requestid: build keyed hash: %w", err)
	}
	if _, err := h.Write([]byte(requestID)); err != nil {
		return "", fmt.Errorf("requestid: hash request id: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:tokenLen], nil
}
