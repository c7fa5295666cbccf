// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chart

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/danielhkuo/chainvote/models"
)

const (
	EmptyMessage = "No votes recorded yet"
	NoRecord     = "No Record"
)

// Palette colors bars by position, wrapping around.
var Palette = []string{"#1f2937", "#374151", "#4b5563", "#6b7280", "#9ca3af"}

type Bar struct {
	ID         common.Hash `json:"id"`
	Name       string      `json:"name"`
	ShortName  string      `json:"short_name"`
	Votes      uint64      `json:"votes"`
	Percentage float64     `json:"percentage"`
	Label      string      `json:"label"` // one decimal, e.g. "30.0"
	Color      string      `json:"color"`
	Leading    bool        `json:"leading"`
}

type Result struct {
	Bars         []Bar  `json:"bars"`
	TotalVotes   uint64 `json:"total_votes"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
	// Leader is the callout text: the leader's full name, or NoRecord when
	// nobody has votes.
	Leader      string `json:"leader"`
	LeaderVotes uint64 `json:"leader_votes"`
	HasLeader   bool   `json:"has_leader"`
}

// Compute derives the chart from a snapshot of vote counts. The leader is
// the first candidate with the highest count.
func Compute(candidates []models.Candidate) Result {
	if len(candidates) == 0 {
		return Result{Bars: []Bar{}, Empty: true, EmptyMessage: EmptyMessage, Leader: NoRecord}
	}

	var total uint64
	leader := 0
	for i, c := range candidates {
		total += c.Votes
		if c.Votes > candidates[leader].Votes {
			leader = i
		}
	}

	res := Result{Bars: make([]Bar, len(candidates)), TotalVotes: total, Leader: NoRecord}
	for i, c := range candidates {
		var pct float64
		if total > 0 {
			pct = float64(c.Votes) / float64(total) * 100
		}
		res.Bars[i] = Bar{
			ID:         c.ID,
			Name:       c.Name,
			ShortName:  ShortName(c.Name),
			Votes:      c.Votes,
			Percentage: pct,
			Label:      fmt.Sprintf("%.1f", pct),
			Color:      Palette[i%len(Palette)],
			Leading:    total > 0 && i == leader,
		}
	}

	if total > 0 {
		res.HasLeader = true
		res.Leader = candidates[leader].Name
		res.LeaderVotes = candidates[leader].Votes
	}
	return res
}

// ShortName is the first space-separated word of name.
func ShortName(name string) string {
	first, _, _ := strings.Cut(name, " ")
	return first
}
