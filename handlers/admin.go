// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/sessions"
)

type AdminHandler struct {
	store *sessions.Store
	cfg   cliparse.Config
}

func NewAdminHandler(store *sessions.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: store, cfg: cfg}
}

// Page handles GET /admin
// Every visit re-reads the owner gate, options and voting period.
func (h *AdminHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess := pageSession(h.store, w, r)
	if err := sess.Admin.Load(r.Context()); err != nil {
		slog.Warn("admin load failed", "session", sess.ID, "error", err)
	}

	render(w, "admin", page{
		Title: "Admin",
		CSRF:  auth.GenerateCSRFToken(sess.ID, h.cfg.SessionSalt),
		Snap:  sess.Admin.Snapshot(r.Context()),
	})
}

// Connect handles POST /admin/connect
func (h *AdminHandler) Connect(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}
	if err := sess.Admin.Connect(r.Context()); err != nil {
		slog.Info("admin connect failed", "session", sess.ID, "error", err)
	}
	redirect(w, r, "/admin")
}

// AddOption handles POST /admin/options
// Rejections are shown on the page, so this always redirects back.
func (h *AdminHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}
	if err := sess.Admin.AddOption(r.Context(), r.PostFormValue("name")); err != nil {
		slog.Info("add option rejected", "session", sess.ID, "error", err)
	}
	redirect(w, r, "/admin")
}
