// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first, so it can stand in
for any of the environment variables below.

# CLI Flags

	-p              Server port (default 3318)
	-rpc            Ethereum JSON-RPC endpoint
	-contract       Voting contract address
	-chain-id       Chain ID (0 asks the node)
	-keystore       Keystore directory
	-account        Keystore account address
	-auto-connect   Treat the wallet as already authorized
	-d              Journal database URL
	-t              Journal database type (sqlite or postgres)
	--session-salt  Session CSRF salt
	-poll           Contract polling interval (default 10s)
	-tx-timeout     Transaction confirmation timeout (default 2m)

# Environment Variables

Flags fall back to environment variables:

  - PORT, RPC_URL, CONTRACT_ADDRESS, CHAIN_ID
  - KEYSTORE_DIR, WALLET_ACCOUNT, WALLET_AUTO_CONNECT
  - DATABASE_URL, DATABASE_TYPE
  - SESSION_SALT
  - POLL_INTERVAL, TX_TIMEOUT

Wallet secrets are read from the environment only:

  - WALLET_PASSPHRASE: keystore passphrase
  - WALLET_PRIVATE_KEY: hex private key (0x prefix optional)

# Validation

Fields are validated with go-playground/validator struct tags; the
contract and account addresses must be 0x-prefixed 20-byte hex.
*/
package cliparse
