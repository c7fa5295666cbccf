// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for the ballot page, the admin
panel and the JSON API.

# Handler Types

Each handler is a struct holding the session store and config:

  - VoterHandler: ballot page and the connect/select/clear/vote actions
  - AdminHandler: owner-gated panel for adding options
  - APIHandler: JSON snapshots of the same views, plus live results

Handlers are created via constructor functions:

	voterHandler := handlers.NewVoterHandler(store, cfg)

# Sessions and Forms

Every browser gets a session cookie on its first page load. Actions are
plain form posts that must carry the session's CSRF token in the
csrf_token field; a missing session or a bad token is answered with 403.
Successful or rejected actions redirect back to the page (303), where the
view shows the outcome:

	GET  /         → VoterHandler.Page
	POST /connect  → VoterHandler.Connect
	POST /select   → VoterHandler.Select (candidate=0x...)
	POST /clear    → VoterHandler.Clear
	POST /vote     → VoterHandler.Vote

	GET  /admin          → AdminHandler.Page
	POST /admin/connect  → AdminHandler.Connect
	POST /admin/options  → AdminHandler.AddOption (name=...)

Vote and AddOption block until the transaction is mined or the configured
transaction timeout passes.

# JSON API

	GET /api/state    → voter view snapshot for the caller's session
	GET /api/results  → chart computed from a fresh contract read
	GET /api/admin    → admin view snapshot for the caller's session
	GET /api/history  → journal entries written by the caller's session

Pages are rendered from templates embedded in the binary.
*/
package handlers
