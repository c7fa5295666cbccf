// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# CORS Middleware

Let a separate frontend read the JSON API:

	server := http.Server{
		Handler: middleware.CORS(mux, cfg.CORSOrigins),
	}

Backed by github.com/rs/cors. Allows GET, POST and OPTIONS with the
Content-Type header. With no origins configured any origin may read,
without credentials; with a list, only those origins may read and the
session cookie is sent along.

# Sessions

The session id lives in an HttpOnly cookie:

	id := middleware.SessionID(r)
	middleware.SetSessionCookie(w, r, id)

The cookie is marked Secure when the request arrived over TLS.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used in the request log.
*/
package middleware
