// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"context"
	"strings"
	"testing"

	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/testutil"
)

func TestAdminPage_Gates(t *testing.T) {
	tests := []struct {
		name     string
		gateway  func(t *testing.T) *gateway.Gateway
		expected string
		absent   string
	}{
		{
			name: "no wallet",
			gateway: func(t *testing.T) *gateway.Gateway {
				start, end := votingSoon()
				_, owner := testutil.NewTestKey(t)
				return testutil.NewGateway(t, testutil.NewFakeChain(owner, start, end), nil)
			},
			expected: "Connect the owner wallet",
			absent:   "Add Option",
		},
		{
			name: "wallet not authorized",
			gateway: func(t *testing.T) *gateway.Gateway {
				start, end := votingSoon()
				return testutil.NewEnv(t, start, end, false).Gateway
			},
			expected: "Connect the owner wallet",
			absent:   "Add Option",
		},
		{
			name: "not the owner",
			gateway: func(t *testing.T) *gateway.Gateway {
				start, end := votingSoon()
				_, owner := testutil.NewTestKey(t)
				key, _ := testutil.NewTestKey(t)
				wallet := gateway.NewKeyWalletFromKey(key, true)
				return testutil.NewGateway(t, testutil.NewFakeChain(owner, start, end), wallet)
			},
			expected: "Access denied",
			absent:   "Add Option",
		},
		{
			name: "owner",
			gateway: func(t *testing.T) *gateway.Gateway {
				start, end := votingSoon()
				return testutil.NewEnv(t, start, end, true).Gateway
			},
			expected: "Add Option",
			absent:   "Access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.gateway(t))

			w := srv.get(srv.admin.Page, "/admin", nil)

			testutil.AssertStatus(t, w, http.StatusOK)
			body := w.Body.String()
			if !strings.Contains(body, tt.expected) {
				t.Errorf("Expected page to contain %q", tt.expected)
			}
			if strings.Contains(body, tt.absent) {
				t.Errorf("Expected page not to contain %q", tt.absent)
			}
		})
	}
}

func TestAdminConnect(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, false)
	srv := newTestServer(t, env.Gateway)

	cookie, token := srv.startSession(t, srv.admin.Page)

	w := srv.post(srv.admin.Connect, "/admin/connect", formWithToken(token), cookie)
	assertRedirect(t, w, "/admin")

	w = srv.get(srv.admin.Page, "/admin", cookie)
	if !strings.Contains(w.Body.String(), "Add Option") {
		t.Error("Expected the option form after connecting the owner wallet")
	}
}

func TestAdminPage_ReloadReadsOptions(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, true)
	srv := newTestServer(t, env.Gateway)
	cookie, _ := srv.startSession(t, srv.admin.Page)

	env.Chain.SeedOption("Zed", 0)

	w := srv.get(srv.admin.Page, "/admin", cookie)
	if !strings.Contains(w.Body.String(), "Zed") {
		t.Error("Expected an option added elsewhere to appear after reload")
	}
}

func TestAdminPage_ReloadReadsGate(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, false)
	srv := newTestServer(t, env.Gateway)
	cookie, _ := srv.startSession(t, srv.admin.Page)

	// Authorized from another tab.
	if _, err := env.Wallet.RequestAccounts(context.Background()); err != nil {
		t.Fatalf("RequestAccounts failed: %v", err)
	}

	w := srv.get(srv.admin.Page, "/admin", cookie)
	body := w.Body.String()
	if !strings.Contains(body, "Add Option") {
		t.Error("Expected the option form once the wallet is authorized")
	}
	if strings.Contains(body, "Connect the owner wallet") {
		t.Error("Expected the connect prompt to be gone")
	}
}

func TestAdminAddOption(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, true)
	srv := newTestServer(t, env.Gateway)
	cookie, token := srv.startSession(t, srv.admin.Page)

	w := srv.post(srv.admin.AddOption, "/admin/options", formWithToken(token, "name", "  Carol  "), cookie)
	assertRedirect(t, w, "/admin")

	options := env.Chain.Options()
	if len(options) != 1 || options[0].Name != "Carol" {
		t.Fatalf("Expected option Carol on chain, got %+v", options)
	}

	w = srv.get(srv.admin.Page, "/admin", cookie)
	body := w.Body.String()
	for _, want := range []string{"Successfully added: Carol", "add_option", "confirmed"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

func TestAdminAddOption_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		open     bool
		input    string
		expected string
	}{
		{"blank name", false, "   ", "Please enter a candidate name"},
		{"voting started", true, "Dave", "Cannot add options after voting has started"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := votingSoon()
			if tt.open {
				start, end = votingOpen()
			}
			env := testutil.NewEnv(t, start, end, true)
			srv := newTestServer(t, env.Gateway)
			cookie, token := srv.startSession(t, srv.admin.Page)

			w := srv.post(srv.admin.AddOption, "/admin/options", formWithToken(token, "name", tt.input), cookie)
			assertRedirect(t, w, "/admin")

			if len(env.Chain.Sent()) != 0 {
				t.Errorf("Expected no transaction, got %d", len(env.Chain.Sent()))
			}
			w = srv.get(srv.admin.Page, "/admin", cookie)
			if !strings.Contains(w.Body.String(), tt.expected) {
				t.Errorf("Expected page to contain %q", tt.expected)
			}
		})
	}
}

func TestAdminForms_RequireToken(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, true)
	srv := newTestServer(t, env.Gateway)
	cookie, _ := srv.startSession(t, srv.admin.Page)

	w := srv.post(srv.admin.AddOption, "/admin/options", formWithToken("forged", "name", "Eve"), cookie)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = srv.post(srv.admin.Connect, "/admin/connect", formWithToken("forged"), cookie)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	if len(env.Chain.Options()) != 0 {
		t.Error("Expected no option to be added")
	}
}
