// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielhkuo/chainvote/admin"
	"github.com/danielhkuo/chainvote/chart"
	"github.com/danielhkuo/chainvote/gateway"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/models"
	"github.com/danielhkuo/chainvote/testutil"
	"github.com/danielhkuo/chainvote/voter"
)

func TestGetState(t *testing.T) {
	start, end := votingOpen()
	env := testutil.NewEnv(t, start, end, true)
	env.Chain.SeedOption("Alice", 2)
	srv := newTestServer(t, env.Gateway)

	w := srv.get(srv.api.GetState, "/api/state", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	if len(w.Result().Cookies()) != 1 || w.Result().Cookies()[0].Name != middleware.SessionCookie {
		t.Error("Expected a session cookie")
	}

	var snap voter.Snapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.State != voter.StateReady {
		t.Errorf("Expected state ready, got %s", snap.State)
	}
	if len(snap.Candidates) != 1 || snap.Candidates[0].Name != "Alice" {
		t.Errorf("Unexpected candidates %+v", snap.Candidates)
	}
	if snap.TotalVotes != 2 {
		t.Errorf("Expected 2 votes, got %d", snap.TotalVotes)
	}
	if snap.VoteLabel != voter.LabelCastVote {
		t.Errorf("Expected %q, got %q", voter.LabelCastVote, snap.VoteLabel)
	}
}

func TestGetResults(t *testing.T) {
	start, end := votingOpen()
	env := testutil.NewEnv(t, start, end, false)
	env.Chain.SeedOption("Alice Smith", 1)
	env.Chain.SeedOption("Bob Jones", 3)
	srv := newTestServer(t, env.Gateway)

	w := srv.get(srv.api.GetResults, "/api/results", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var result chart.Result
	testutil.AssertJSON(t, w, &result)
	if result.TotalVotes != 4 {
		t.Errorf("Expected 4 votes, got %d", result.TotalVotes)
	}
	if result.Leader != "Bob Jones" {
		t.Errorf("Expected Bob Jones to lead, got %q", result.Leader)
	}
	if len(result.Bars) != 2 || result.Bars[1].Label != "75.0" || result.Bars[1].ShortName != "Bob" {
		t.Errorf("Unexpected bars %+v", result.Bars)
	}
}

func TestGetResults_Errors(t *testing.T) {
	start, end := votingOpen()

	t.Run("no wallet", func(t *testing.T) {
		_, owner := testutil.NewTestKey(t)
		gw := testutil.NewGateway(t, testutil.NewFakeChain(owner, start, end), nil)
		srv := newTestServer(t, gw)

		w := srv.get(srv.api.GetResults, "/api/results", nil)
		testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

		var resp models.ErrorResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Message != "Install a wallet first" {
			t.Errorf("Unexpected message %q", resp.Message)
		}
	})

	t.Run("node failure", func(t *testing.T) {
		env := testutil.NewEnv(t, start, end, true)
		env.Chain.FailRead(gateway.MethodGetOptions, errors.New("connection refused"))
		srv := newTestServer(t, env.Gateway)

		w := srv.get(srv.api.GetResults, "/api/results", nil)
		testutil.AssertStatus(t, w, http.StatusBadGateway)
	})
}

func TestGetAdmin(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, true)
	env.Chain.SeedOption("Alice", 0)
	srv := newTestServer(t, env.Gateway)

	w := srv.get(srv.api.GetAdmin, "/api/admin", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap admin.Snapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.Gate != admin.GateAuthorized {
		t.Errorf("Expected authorized gate, got %s", snap.Gate)
	}
	if !snap.FormEnabled {
		t.Error("Expected the form to be enabled before voting starts")
	}
	if len(snap.Options) != 1 || snap.Options[0].Name != "Alice" {
		t.Errorf("Unexpected options %+v", snap.Options)
	}
	if snap.WindowStatus != models.StatusNotStarted {
		t.Errorf("Expected %q, got %q", models.StatusNotStarted, snap.WindowStatus)
	}
}

func TestGetAdmin_Reload(t *testing.T) {
	start, end := votingSoon()
	env := testutil.NewEnv(t, start, end, false)
	srv := newTestServer(t, env.Gateway)
	cookie, _ := srv.startSession(t, srv.api.GetAdmin)

	if _, err := env.Wallet.RequestAccounts(context.Background()); err != nil {
		t.Fatalf("RequestAccounts failed: %v", err)
	}
	env.Chain.SeedOption("Zed", 0)

	w := srv.get(srv.api.GetAdmin, "/api/admin", cookie)
	testutil.AssertStatus(t, w, http.StatusOK)

	var snap admin.Snapshot
	testutil.AssertJSON(t, w, &snap)
	if snap.Gate != admin.GateAuthorized {
		t.Errorf("Expected authorized gate after reload, got %s", snap.Gate)
	}
	if len(snap.Options) != 1 || snap.Options[0].Name != "Zed" {
		t.Errorf("Expected the new option after reload, got %+v", snap.Options)
	}
}

func TestGetHistory(t *testing.T) {
	start, end := votingOpen()
	env := testutil.NewEnv(t, start, end, true)
	alice := env.Chain.SeedOption("Alice", 0)
	srv := newTestServer(t, env.Gateway)

	cookie, token := srv.startSession(t, srv.voter.Page)
	srv.post(srv.voter.Select, "/select", formWithToken(token, "candidate", alice.Hex()), cookie)
	w := srv.post(srv.voter.Vote, "/vote", formWithToken(token), cookie)
	assertRedirect(t, w, "/")

	w = srv.get(srv.api.GetHistory, "/api/history", cookie)
	testutil.AssertStatus(t, w, http.StatusOK)

	var records []models.TxRecord
	testutil.AssertJSON(t, w, &records)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Kind != models.TxKindCastVote || rec.Status != models.TxStatusConfirmed || rec.Detail != "Alice" {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.SessionID != cookie.Value {
		t.Errorf("Expected session %s, got %s", cookie.Value, rec.SessionID)
	}

	// A fresh session has no history
	w = srv.get(srv.api.GetHistory, "/api/history", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var empty []models.TxRecord
	testutil.AssertJSON(t, w, &empty)
	if len(empty) != 0 {
		t.Errorf("Expected empty history, got %d records", len(empty))
	}
}
