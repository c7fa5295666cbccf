// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var (
	ErrInvalidCSRFToken = errors.New("invalid csrf token")
	ErrInvalidSession   = errors.New("invalid session id")
)

// NewSessionID returns a random session identifier for the session cookie.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateSessionID checks that a cookie value has the session id format.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidSession
	}
	return nil
}

// GenerateCSRFToken creates an HMAC-based form token bound to a session.
// This is deterministic, so it never needs to be stored.
func GenerateCSRFToken(sessionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(sessionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateCSRFToken checks if the submitted token belongs to the session
func ValidateCSRFToken(sessionID, token, salt string) error {
	expected := GenerateCSRFToken(sessionID, salt)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidCSRFToken
	}
	return nil
}

// SameAddress compares two hex addresses ignoring checksum case.
// Empty or malformed addresses never match.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return strings.EqualFold(common.HexToAddress(a).Hex(), common.HexToAddress(b).Hex())
}

// OptionID derives the identifier the contract assigns to an option name:
// keccak256 of the UTF-8 bytes.
func OptionID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// ShortID abbreviates a 32-byte id for display, e.g. "0x1a2b3c4d...".
func ShortID(id common.Hash) string {
	return id.Hex()[:10] + "..."
}

// ShortAddress abbreviates an address for display, e.g. "0x1a2b...9f0e".
func ShortAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}
