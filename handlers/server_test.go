// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/db"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/sessions"
	"github.com/danielhkuo/chainvote/testutil"
)

type testServer struct {
	cfg   cliparse.Config
	store *sessions.Store
	voter *VoterHandler
	admin *AdminHandler
	api   *APIHandler
}

func newTestServer(t *testing.T, gw *gateway.Gateway) *testServer {
	t.Helper()

	cfg := testutil.GetTestConfig()
	store := sessions.NewStore(gw, sessions.Config{
		Journal:   db.NewJournal(testutil.SetupTestDB(t)),
		TxTimeout: cfg.TxTimeout,
	})
	return &testServer{
		cfg:   cfg,
		store: store,
		voter: NewVoterHandler(store, cfg),
		admin: NewAdminHandler(store, cfg),
		api:   NewAPIHandler(store, gw),
	}
}

// votingOpen returns a window that is active right now.
func votingOpen() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

// votingSoon returns a window that has not started yet.
func votingSoon() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(time.Hour), now.Add(2 * time.Hour)
}

// startSession loads page like a browser would and returns the session
// cookie with its CSRF token.
func (s *testServer) startSession(t *testing.T, page http.HandlerFunc) (*http.Cookie, string) {
	t.Helper()

	w := httptest.NewRecorder()
	page(w, httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c, auth.GenerateCSRFToken(c.Value, s.cfg.SessionSalt)
		}
	}
	t.Fatal("Expected a session cookie")
	return nil, ""
}

func (s *testServer) get(page http.HandlerFunc, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	page(w, req)
	return w
}

func (s *testServer) post(action http.HandlerFunc, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if cookie != nil {
		req = testutil.MakeFormRequest(path, form, cookie)
	} else {
		req = testutil.MakeFormRequest(path, form)
	}
	w := httptest.NewRecorder()
	action(w, req)
	return w
}

func formWithToken(token string, kv ...string) url.Values {
	form := url.Values{CSRFField: {token}}
	for i := 0; i+1 < len(kv); i += 2 {
		form.Set(kv[i], kv[i+1])
	}
	return form
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	testutil.AssertStatus(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %s, got %q", location, got)
	}
}
