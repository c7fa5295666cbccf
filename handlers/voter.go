// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/danielhkuo/chainvote/auth"
	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/sessions"
	"github.com/danielhkuo/chainvote/voter"
)

type VoterHandler struct {
	store *sessions.Store
	cfg   cliparse.Config
}

func NewVoterHandler(store *sessions.Store, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{store: store, cfg: cfg}
}

// Page handles GET /
func (h *VoterHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess := pageSession(h.store, w, r)

	// Pick up a wallet that was authorized from another tab or the admin page
	if !sess.Voter.Connected() {
		if err := sess.Voter.Init(r.Context()); err != nil {
			slog.Warn("voter init failed", "session", sess.ID, "error", err)
		}
	}

	snap := sess.Voter.Snapshot()
	data := page{
		Title: "Ballot",
		CSRF:  auth.GenerateCSRFToken(sess.ID, h.cfg.SessionSalt),
		Snap:  snap,
	}
	if snap.State != voter.StateDisconnected {
		data.Refresh = refreshSeconds(h.cfg.PollInterval)
	}
	render(w, "voter", data)
}

// Connect handles POST /connect
func (h *VoterHandler) Connect(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}
	// The view keeps the user-facing message
	if err := sess.Voter.Connect(r.Context()); err != nil {
		slog.Info("wallet connect failed", "session", sess.ID, "error", err)
	}
	redirect(w, r, "/")
}

// Select handles POST /select
func (h *VoterHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}

	id, err := parseOptionID(r.PostFormValue("candidate"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate must be a 32-byte hex id")
		return
	}
	if err := sess.Voter.Select(id); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	redirect(w, r, "/")
}

// Clear handles POST /clear
func (h *VoterHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}
	sess.Voter.Clear()
	redirect(w, r, "/")
}

// Vote handles POST /vote
// Blocks until the transaction is mined or the transaction timeout passes.
func (h *VoterHandler) Vote(w http.ResponseWriter, r *http.Request) {
	sess, ok := formSession(h.store, h.cfg.SessionSalt, w, r)
	if !ok {
		return
	}

	err := sess.Voter.Vote(r.Context())
	if errors.Is(err, voter.ErrVotingInactive) {
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		slog.Info("vote rejected", "session", sess.ID, "error", err)
	}
	redirect(w, r, "/")
}

func parseOptionID(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, errors.New("wrong length")
	}
	return common.BytesToHash(b), nil
}
