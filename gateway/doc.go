// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gateway is the only code that talks to the wallet and the Voting
contract.

A Gateway wraps a go-ethereum contract backend (an *ethclient.Client in
production) and a Wallet:

	gw, err := gateway.New(client, gateway.Config{
		Address: common.HexToAddress(cfg.ContractAddress),
		ChainID: chainID,
		Wallet:  wallet,
	})

# Reads and writes

Contract(ctx, false) binds the contract to the backend for calls;
Contract(ctx, true) also binds the wallet's signer. The typed helpers wrap
each contract method (GetOptions, GetVotes, CastVote, AddOption, ...).

Writes are simulated from the sender before being signed, so a revert comes
back with its error data. WaitMined blocks until the transaction is mined
and reports ErrTransactionFailed for a reverted receipt. Nothing is
retried.

# Errors

Failures from the node are wrapped in *ChainError. When the revert matches
one of the contract's custom errors, errors.Is matches the sentinel:

	if errors.Is(err, gateway.ErrAlreadyVoted) { ... }

FriendlyMessage turns the known errors into short user-facing text.

# Wallets

KeyWallet signs with a raw private key; KeystoreWallet unlocks an
encrypted keystore account on RequestAccounts. Neither reports accounts
until it has been connected.

# Metrics

Every contract call is counted and timed under chainvote_contract_calls_total
and chainvote_contract_call_seconds when a Registerer is configured.
*/
package gateway
