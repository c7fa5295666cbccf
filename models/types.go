// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Voting window status labels
const (
	StatusNotStarted = "Not Started"
	StatusActive     = "Active"
	StatusEnded      = "Ended"
)

// Journal transaction kinds
const (
	TxKindAddOption = "add_option"
	TxKindCastVote  = "cast_vote"
)

// Journal transaction outcomes
const (
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
	TxStatusPending   = "pending" // broadcast, wait for inclusion gave up
)

// Domain types

// Candidate is a voting option as read from the contract.
type Candidate struct {
	ID    common.Hash `json:"id"`
	Name  string      `json:"name"`
	Votes uint64      `json:"votes"`
}

// VotingWindow holds the contract's voting period together with the flags
// derived from it at a given instant.
type VotingWindow struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	HasStarted    bool      `json:"has_started"`
	HasEnded      bool      `json:"has_ended"`
	IsActive      bool      `json:"is_active"`
	CanAddOptions bool      `json:"can_add_options"`
}

// NewVotingWindow derives the window flags at now. Comparisons are done on
// unix seconds, matching the contract's block timestamps.
func NewVotingWindow(start, end, now time.Time) VotingWindow {
	s, e, n := start.Unix(), end.Unix(), now.Unix()
	return VotingWindow{
		Start:         start,
		End:           end,
		HasStarted:    n >= s,
		HasEnded:      n >= e,
		IsActive:      n >= s && n < e,
		CanAddOptions: n < s,
	}
}

// Status returns the human label for the window state.
func (w VotingWindow) Status() string {
	switch {
	case w.HasEnded:
		return StatusEnded
	case w.HasStarted:
		return StatusActive
	default:
		return StatusNotStarted
	}
}

// TxRecord is one journal entry for a transaction this front-end submitted.
type TxRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	TxHash    string    `json:"tx_hash"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Response types

type HealthResponse struct {
	Status string `json:"status"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
