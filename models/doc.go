// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and response types shared by the views,
the contract gateway and the HTTP handlers.

# Domain Types

  - Candidate: option id (bytes32), name and vote count read from the contract
  - VotingWindow: contract start/end time and the flags derived at an instant
  - TxRecord: journal entry for a submitted transaction

# Voting Window

NewVotingWindow derives the flags at a given time:

	w := models.NewVotingWindow(start, end, time.Now())

	HasStarted    = now >= start
	HasEnded      = now >= end
	IsActive      = start <= now < end
	CanAddOptions = now < start

All comparisons use unix seconds, so a timestamp exactly equal to start is
active and one exactly equal to end is closed.

# Constants

Window status labels:

	StatusNotStarted = "Not Started"
	StatusActive     = "Active"
	StatusEnded      = "Ended"

Journal kinds and outcomes:

	TxKindAddOption = "add_option"
	TxKindCastVote  = "cast_vote"

	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
	TxStatusPending   = "pending"
*/
package models
