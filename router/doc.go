// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for chainvote.

# Route Registration

NewRouter returns the full handler, with CORS applied in front of the mux:

	handler := router.NewRouter(store, gw, cfg, registry)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics - Prometheus exposition of the given gatherer

Ballot (form posts carry the session's CSRF token):

	GET  /        - Ballot and live results
	POST /connect - Connect the wallet
	POST /select  - Select a candidate
	POST /clear   - Clear the selection
	POST /vote    - Cast the vote

Admin:

	GET  /admin         - Owner panel
	POST /admin/connect - Connect the wallet and re-check ownership
	POST /admin/options - Add an option before voting starts

JSON API:

	GET /api/state   - Caller's ballot state
	GET /api/results - Live results chart
	GET /api/admin   - Caller's admin panel state
	GET /api/history - Transactions the caller submitted

# Handler Initialization

The router creates handler instances with dependency injection:

	voterHandler := handlers.NewVoterHandler(store, cfg)
	adminHandler := handlers.NewAdminHandler(store, cfg)
	apiHandler := handlers.NewAPIHandler(store, candidates)

Every page and action is wrapped in middleware.WithLogging.
*/
package router
