// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/chainvote/chart"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/models"
	"github.com/danielhkuo/chainvote/sessions"
)

// HistoryLimit caps GET /api/history.
const HistoryLimit = 50

// Candidates reads the current tally straight from the contract.
type Candidates interface {
	LoadCandidates(ctx context.Context) ([]models.Candidate, error)
}

type APIHandler struct {
	store      *sessions.Store
	candidates Candidates
}

func NewAPIHandler(store *sessions.Store, candidates Candidates) *APIHandler {
	return &APIHandler{store: store, candidates: candidates}
}

// GetState handles GET /api/state
// Returns the caller's voter view.
func (h *APIHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess := pageSession(h.store, w, r)
	middleware.JSONResponse(w, http.StatusOK, sess.Voter.Snapshot())
}

// GetResults handles GET /api/results
// Reads the tally fresh from the contract rather than from any session.
func (h *APIHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.candidates.LoadCandidates(r.Context())
	if err != nil {
		slog.Warn("failed to load results", "error", err)
		if errors.Is(err, gateway.ErrWalletNotInstalled) {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, gateway.FriendlyMessage(err, ""))
			return
		}
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to read results from the contract")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, chart.Compute(candidates))
}

// GetAdmin handles GET /api/admin
func (h *APIHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	sess := pageSession(h.store, w, r)
	if err := sess.Admin.Load(r.Context()); err != nil {
		slog.Warn("admin load failed", "session", sess.ID, "error", err)
	}
	middleware.JSONResponse(w, http.StatusOK, sess.Admin.Snapshot(r.Context()))
}

// GetHistory handles GET /api/history
// Lists the transactions this session submitted, newest first.
func (h *APIHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess := pageSession(h.store, w, r)
	records, err := h.store.History(r.Context(), sess, HistoryLimit)
	if err != nil {
		slog.Error("failed to read history", "session", sess.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to read transaction history")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, records)
}
