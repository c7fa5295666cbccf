// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/danielhkuo/chainvote/chart"
	"github.com/danielhkuo/chainvote/testutil"
)

func TestBarStyle(t *testing.T) {
	tests := []struct {
		name     string
		bar      chart.Bar
		expected string
	}{
		{"no votes", chart.Bar{Percentage: 0, Color: "#3b82f6"}, "width:0.0%;background:#3b82f6"},
		{"some votes", chart.Bar{Percentage: 37.5, Color: "#10b981"}, "width:37.5%;background:#10b981;min-width:2px"},
		{"all votes", chart.Bar{Percentage: 100, Color: "#f59e0b"}, "width:100.0%;background:#f59e0b;min-width:2px"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(barStyle(tt.bar)); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestVoterPage_ZeroVotesHaveNoWidth(t *testing.T) {
	start, end := votingOpen()
	env := testutil.NewEnv(t, start, end, true)
	env.Chain.SeedOption("Alice", 0)
	env.Chain.SeedOption("Bob", 0)
	srv := newTestServer(t, env.Gateway)

	w := srv.get(srv.voter.Page, "/", nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	body := w.Body.String()
	if got := strings.Count(body, "width:0.0%"); got != 2 {
		t.Errorf("Expected 2 zero-width bars, got %d", got)
	}
	if strings.Contains(body, "min-width") {
		t.Error("Expected no minimum width on bars without votes")
	}
}
