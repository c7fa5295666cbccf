// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"bytes"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Environment and transaction errors
var (
	ErrWalletNotInstalled = errors.New("no wallet installed")
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrTxPending          = errors.New("transaction still pending")
)

// Contract custom errors
var (
	ErrNotOwner             = errors.New("caller is not the contract owner")
	ErrVotingAlreadyStarted = errors.New("voting already started")
	ErrAlreadyVoted         = errors.New("already voted")
	ErrInvalidOption        = errors.New("invalid option")
	ErrInvalidTimeframe     = errors.New("invalid timeframe")
	ErrVotingNotStarted     = errors.New("voting not started")
	ErrVotingClosed         = errors.New("voting closed")
)

// contractErrors is ordered so substring matching is deterministic.
var contractErrors = []struct {
	name string
	kind error
}{
	{"Voting__NotOwner", ErrNotOwner},
	{"Voting__VotingAlreadyStarted", ErrVotingAlreadyStarted},
	{"Voting__AlreadyVoted", ErrAlreadyVoted},
	{"Voting__InvalidOption", ErrInvalidOption},
	{"Voting__InvalidTimeframe", ErrInvalidTimeframe},
	{"Voting__VotingNotStarted", ErrVotingNotStarted},
	{"Voting__VotingClosed", ErrVotingClosed},
}

// ChainError is an error returned by the node or the wallet while talking
// to the contract. Error() is the raw message; errors.Is matches the
// contract error sentinel when the revert could be decoded.
type ChainError struct {
	Name string // contract error name, e.g. Voting__AlreadyVoted
	Kind error
	Err  error
}

func (e *ChainError) Error() string {
	msg := e.Err.Error()
	if e.Name != "" && !strings.Contains(msg, e.Name) {
		return msg + " (" + e.Name + ")"
	}
	return msg
}

func (e *ChainError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// decodeChainError classifies an error from a contract call. It reads the
// 4-byte selector from JSON-RPC error data and falls back to looking for
// the error name in the message.
func decodeChainError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ChainError
	if errors.As(err, &ce) {
		return err
	}

	var de rpc.DataError
	if errors.As(err, &de) {
		if name, kind, ok := errorFromData(de.ErrorData()); ok {
			return &ChainError{Name: name, Kind: kind, Err: err}
		}
	}

	msg := err.Error()
	for _, known := range contractErrors {
		if strings.Contains(msg, known.name) {
			return &ChainError{Name: known.name, Kind: known.kind, Err: err}
		}
	}
	return &ChainError{Err: err}
}

func errorFromData(data interface{}) (string, error, bool) {
	raw, ok := data.(string)
	if !ok {
		return "", nil, false
	}
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) < 4 {
		return "", nil, false
	}
	for _, known := range contractErrors {
		abiErr, ok := votingABI.Errors[known.name]
		if !ok {
			continue
		}
		if bytes.Equal(abiErr.ID[:4], b[:4]) {
			return known.name, known.kind, true
		}
	}
	return "", nil, false
}

// RevertData returns the ABI-encoded revert payload for a contract error
// name, as a node would report it in JSON-RPC error data.
func RevertData(name string) string {
	abiErr, ok := votingABI.Errors[name]
	if !ok {
		return ""
	}
	return hexutil.Encode(abiErr.ID[:4])
}

// FriendlyMessage maps the known contract and wallet errors to a message for
// the user and otherwise returns the raw error text, or fallback when the
// error has none.
func FriendlyMessage(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWalletNotInstalled):
		return "Install a wallet first"
	case errors.Is(err, ErrWalletNotConnected):
		return "Connect your wallet first"
	case errors.Is(err, ErrTxPending):
		return "Transaction submitted but not yet confirmed"
	case errors.Is(err, ErrNotOwner):
		return "Only the contract owner can add options"
	case errors.Is(err, ErrVotingAlreadyStarted):
		return "Cannot add options after voting has started"
	case errors.Is(err, ErrAlreadyVoted):
		return "You have already voted"
	case errors.Is(err, ErrInvalidOption):
		return "That option does not exist"
	case errors.Is(err, ErrVotingNotStarted):
		return "Voting has not started yet"
	case errors.Is(err, ErrVotingClosed):
		return "Voting has closed"
	case errors.Is(err, ErrInvalidTimeframe):
		return "The voting timeframe is invalid"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
