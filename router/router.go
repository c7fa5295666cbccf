// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/chainvote/cliparse"
	"github.com/danielhkuo/chainvote/handlers"
	"github.com/danielhkuo/chainvote/middleware"
	"github.com/danielhkuo/chainvote/sessions"
)

// NewRouter wires every route. A nil gatherer serves the default registry
// on /metrics.
func NewRouter(store *sessions.Store, candidates handlers.Candidates, cfg cliparse.Config, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Initialize handlers
	voterHandler := handlers.NewVoterHandler(store, cfg)
	adminHandler := handlers.NewAdminHandler(store, cfg)
	apiHandler := handlers.NewAPIHandler(store, candidates)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Ballot (public)
	mux.HandleFunc("GET /{$}", middleware.WithLogging(voterHandler.Page))
	mux.HandleFunc("POST /connect", middleware.WithLogging(voterHandler.Connect))
	mux.HandleFunc("POST /select", middleware.WithLogging(voterHandler.Select))
	mux.HandleFunc("POST /clear", middleware.WithLogging(voterHandler.Clear))
	mux.HandleFunc("POST /vote", middleware.WithLogging(voterHandler.Vote))

	// Option management (owner only, gated in the view)
	mux.HandleFunc("GET /admin", middleware.WithLogging(adminHandler.Page))
	mux.HandleFunc("POST /admin/connect", middleware.WithLogging(adminHandler.Connect))
	mux.HandleFunc("POST /admin/options", middleware.WithLogging(adminHandler.AddOption))

	// JSON API
	mux.HandleFunc("GET /api/state", middleware.WithLogging(apiHandler.GetState))
	mux.HandleFunc("GET /api/results", middleware.WithLogging(apiHandler.GetResults))
	mux.HandleFunc("GET /api/admin", middleware.WithLogging(apiHandler.GetAdmin))
	mux.HandleFunc("GET /api/history", middleware.WithLogging(apiHandler.GetHistory))

	return middleware.CORS(mux, cfg.CORSOrigins)
}
