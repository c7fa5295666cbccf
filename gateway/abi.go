// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package gateway

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// VotingABI is the JSON ABI of the deployed Voting contract.
const VotingABI = `[
	{"inputs":[{"internalType":"uint256","name":"_startTime","type":"uint256"},{"internalType":"uint256","name":"_endTime","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"},
	{"inputs":[],"name":"Voting__AlreadyVoted","type":"error"},
	{"inputs":[],"name":"Voting__InvalidOption","type":"error"},
	{"inputs":[],"name":"Voting__InvalidTimeframe","type":"error"},
	{"inputs":[],"name":"Voting__NotOwner","type":"error"},
	{"inputs":[],"name":"Voting__VotingAlreadyStarted","type":"error"},
	{"inputs":[],"name":"Voting__VotingClosed","type":"error"},
	{"inputs":[],"name":"Voting__VotingNotStarted","type":"error"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"string","name":"name","type":"string"},{"indexed":true,"internalType":"bytes32","name":"optionId","type":"bytes32"}],"name":"OptionAdded","type":"event"},
	{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"voter","type":"address"},{"indexed":true,"internalType":"bytes32","name":"optionId","type":"bytes32"}],"name":"VoteCast","type":"event"},
	{"inputs":[{"internalType":"string","name":"_name","type":"string"}],"name":"addOption","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"optionId","type":"bytes32"}],"name":"castVote","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getNumOptions","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getOptions","outputs":[{"components":[{"internalType":"string","name":"name","type":"string"},{"internalType":"bytes32","name":"id","type":"bytes32"},{"internalType":"bool","name":"exists","type":"bool"}],"internalType":"struct Voting.Option[]","name":"","type":"tuple[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getOwner","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"optionId","type":"bytes32"}],"name":"getVotes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"","type":"address"}],"name":"hasVoted","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"i_endTime","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"i_startTime","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"name":"votes","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// Contract method names
const (
	MethodAddOption     = "addOption"
	MethodCastVote      = "castVote"
	MethodGetOptions    = "getOptions"
	MethodGetVotes      = "getVotes"
	MethodGetNumOptions = "getNumOptions"
	MethodGetOwner      = "getOwner"
	MethodHasVoted      = "hasVoted"
	MethodStartTime     = "i_startTime"
	MethodEndTime       = "i_endTime"
)

var votingABI = mustParseABI(VotingABI)

// ParsedABI returns the parsed Voting ABI.
func ParsedABI() abi.ABI {
	return votingABI
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("gateway: invalid Voting ABI: " + err.Error())
	}
	return parsed
}
