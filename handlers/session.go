// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/sessions"
)

// CSRFField is the form field carrying the session's CSRF token.
const CSRFField = "csrf_token"

// pageSession returns the caller's session, starting a new one (and setting
// the cookie) when the cookie is missing or stale.
func pageSession(store *sessions.Store, w http.ResponseWriter, r *http.Request) *sessions.Session {
	sess, created := store.Ensure(r.Context(), middleware.SessionID(r))
	if created {
		middleware.SetSessionCookie(w, r, sess.ID)
	}
	return sess
}

// formSession validates a form post: the session must exist and the form
// must carry its CSRF token. On failure the error response is written and
// ok is false.
func formSession(store *sessions.Store, salt string, w http.ResponseWriter, r *http.Request) (*sessions.Session, bool) {
	sess, ok := store.Get(middleware.SessionID(r))
	if !ok {
		middleware.ErrorResponse(w, http.StatusForbidden, "Session expired, reload the page")
		return nil, false
	}
	if err := auth.ValidateCSRFToken(sess.ID, r.PostFormValue(CSRFField), salt); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid form token")
		return nil, false
	}
	return sess, true
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
