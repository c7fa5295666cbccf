// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/db"
	"github.com/danielhkuo/chainvote/gateway"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Open keeps SQLite on a single connection, so :memory: stays private
	// to this *sql.DB and survives between queries
	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		RPCURL:          "http://127.0.0.1:8545",
		ContractAddress: TestContractAddress.Hex(),
		ChainID:         TestChainID.Int64(),
		DatabaseURL:     "file::memory:",
		DatabaseType:    db.TypeSQLite,
		SessionSalt:     "test-session-salt",
		PollInterval:    10 * time.Second,
		TxTimeout:       5 * time.Second,
	}
}

// Env bundles a fake chain with a gateway connected to it.
type Env struct {
	Chain   *FakeChain
	Gateway *gateway.Gateway
	Wallet  *gateway.KeyWallet
	Owner   common.Address
	Key     *ecdsa.PrivateKey
}

// NewEnv deploys a fake contract whose owner is the wallet's account, so
// the test wallet can both add options and vote. Pass connected=false to
// start with an unauthorized wallet.
func NewEnv(t *testing.T, start, end time.Time, connected bool) *Env {
	t.Helper()

	key, owner := NewTestKey(t)
	chain := NewFakeChain(owner, start, end)
	wallet := gateway.NewKeyWalletFromKey(key, connected)
	gw, err := gateway.New(chain, gateway.Config{
		Address: TestContractAddress,
		ChainID: TestChainID,
		Wallet:  wallet,
	})
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}
	return &Env{Chain: chain, Gateway: gw, Wallet: wallet, Owner: owner, Key: key}
}

// NewGateway connects a gateway to chain with the given wallet, which may
// be nil to simulate a missing wallet.
func NewGateway(t *testing.T, chain *FakeChain, wallet gateway.Wallet) *gateway.Gateway {
	t.Helper()

	gw, err := gateway.New(chain, gateway.Config{
		Address: TestContractAddress,
		ChainID: TestChainID,
		Wallet:  wallet,
	})
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}
	return gw
}

// FixedClock returns a clock that always reads now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form POST like a browser would submit it.
func MakeFormRequest(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
