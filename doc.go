// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the chainvote server.

chainvote is a server-rendered front-end for a Voting smart contract. It
shows the ballot and live results, casts votes, and lets the contract
owner add options before voting opens. All vote rules live in the
contract; the server only reads it, signs transactions with its wallet
and explains reverts.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	RPC_URL=http://127.0.0.1:8545 CONTRACT_ADDRESS=0x... SESSION_SALT=... go run .

Or with flags:

	go run . -p 3318 -rpc http://127.0.0.1:8545 -contract 0x... -session-salt dev

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - RPC_URL (-rpc): JSON-RPC endpoint of the node
  - CONTRACT_ADDRESS (-contract): deployed Voting contract
  - SESSION_SALT (-session-salt): secret for CSRF form tokens

Wallet (optional; without one users are asked to install a wallet):

  - WALLET_PRIVATE_KEY: hex private key (env only)
  - KEYSTORE_DIR (-keystore), WALLET_ACCOUNT (-account), WALLET_PASSPHRASE (env only)
  - WALLET_AUTO_CONNECT (-auto-connect): treat the wallet as already authorized

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - CHAIN_ID (-chain-id): chain id, 0 asks the node (default: 0)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): journal database (default: file:chainvote.db)
  - POLL_INTERVAL (-poll): contract polling interval (default: 10s)
  - TX_TIMEOUT (-tx-timeout): transaction confirmation timeout (default: 2m)
  - CORS_ORIGINS (-cors): comma-separated origins for the JSON API

# Architecture

  - gateway: contract access, wallets, revert decoding, call metrics
  - voter: ballot view state per session
  - admin: owner-gated option management per session
  - chart: results chart computation
  - sessions: session store and the polling job
  - db: transaction journal (SQLite or PostgreSQL)
  - handlers: HTML pages, form actions and JSON API
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, session cookie, JSON helpers
  - models: shared domain types
  - auth: session ids, CSRF tokens, address and id helpers
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
