// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewSessionID(t *testing.T) {
	id1 := NewSessionID()
	id2 := NewSessionID()

	if id1 == id2 {
		t.Error("NewSessionID() produced duplicate IDs (extremely unlikely)")
	}
	if err := ValidateSessionID(id1); err != nil {
		t.Errorf("ValidateSessionID() rejected a fresh id: %v", err)
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid uuid", "6f1c1a8e-3b58-4b7e-9a51-0f2f8e9c4d21", false},
		{"empty", "", true},
		{"garbage", "not-a-session", true},
		{"sql-ish", "' OR 1=1 --", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateCSRFToken(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		salt      string
	}{
		{"standard", "session123", "secret-salt"},
		{"empty session id", "", "salt"},
		{"empty salt", "session456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := GenerateCSRFToken(tt.sessionID, tt.salt)

			if token == "" {
				t.Error("GenerateCSRFToken() returned empty string")
			}

			// Should be deterministic
			if token != GenerateCSRFToken(tt.sessionID, tt.salt) {
				t.Error("GenerateCSRFToken() is not deterministic")
			}

			// Should be URL-safe
			if strings.ContainsAny(token, "+/=") {
				t.Errorf("GenerateCSRFToken() contains non-URL-safe chars: %s", token)
			}

			if tt.sessionID != "" && tt.salt != "" {
				if token == GenerateCSRFToken(tt.sessionID+"x", tt.salt) {
					t.Error("GenerateCSRFToken() produced same token for different sessions")
				}
				if token == GenerateCSRFToken(tt.sessionID, tt.salt+"x") {
					t.Error("GenerateCSRFToken() produced same token for different salts")
				}
			}
		})
	}
}

func TestValidateCSRFToken(t *testing.T) {
	salt := "test-salt"
	sessionID := NewSessionID()
	valid := GenerateCSRFToken(sessionID, salt)

	tests := []struct {
		name      string
		sessionID string
		token     string
		wantErr   error
	}{
		{"valid token", sessionID, valid, nil},
		{"wrong session", NewSessionID(), valid, ErrInvalidCSRFToken},
		{"empty token", sessionID, "", ErrInvalidCSRFToken},
		{"tampered token", sessionID, valid + "x", ErrInvalidCSRFToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCSRFToken(tt.sessionID, tt.token, salt)
			if err != tt.wantErr {
				t.Errorf("ValidateCSRFToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSameAddress(t *testing.T) {
	owner := "0xAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAaAa"

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", owner, owner, true},
		{"lowercase", owner, strings.ToLower(owner), true},
		{"uppercase hex digits", owner, "0x" + strings.ToUpper(owner[2:]), true},
		{"different", owner, "0x00000000000000000000000000000000000000bb", false},
		{"empty", owner, "", false},
		{"malformed", owner, "0xAA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameAddress(tt.a, tt.b); got != tt.want {
				t.Errorf("SameAddress(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOptionID(t *testing.T) {
	alice := OptionID("Alice")

	if alice != OptionID("Alice") {
		t.Error("OptionID() is not deterministic")
	}
	if alice == OptionID("Bob") {
		t.Error("OptionID() produced same id for different names")
	}
	if alice == (common.Hash{}) {
		t.Error("OptionID() returned zero hash")
	}

	// keccak256("") is a well known constant
	empty := "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := OptionID("").Hex(); got != empty {
		t.Errorf("OptionID(\"\") = %s, want %s", got, empty)
	}
}

func TestShortID(t *testing.T) {
	id := common.HexToHash("0x1a2b3c4d5e6f00000000000000000000000000000000000000000000000000ff")
	if got := ShortID(id); got != "0x1a2b3c4d..." {
		t.Errorf("ShortID() = %q", got)
	}
}

func TestShortAddress(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	h := addr.Hex()
	want := h[:6] + "..." + h[38:]
	if got := ShortAddress(addr); got != want || len(got) != 13 {
		t.Errorf("ShortAddress() = %q, want %q", got, want)
	}
}
