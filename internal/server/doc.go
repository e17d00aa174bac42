// Package server orchestrates the nubarmory server components.
//
// # Overview
//
// The server package is the central coordinator. It opens the store, builds
// the token codecs from the configured secret, and mounts the admin API,
// admin pages, static assets and health endpoints on one HTTP server.
//
// # Request Path
//
// Every request passes through, outermost first:
//
//  1. metrics.RequestMetrics, when metrics are enabled
//  2. edge.Gate, which redirects cookie-less /admin requests to the login page
//  3. the route mux, where API routes apply the full route guard
//
// # Endpoints
//
//   - GET /health - Liveness check
//   - GET /ready - Readiness check (pings the store)
//   - GET /static/... - Embedded admin assets
//   - GET {metrics.path} - Prometheus metrics, when enabled
//   - /api/admin/... - Admin JSON API (see package api)
//   - /admin/... - Admin pages (see package webadmin)
//
// # Token Codecs
//
// Login always issues tokens with the golang-jwt codec. The codec behind the
// route guards is chosen by auth.verifier: "full" reuses the issuing codec,
// "edge" uses the stdlib HMAC codec. Both accept each other's tokens.
//
// # Lifecycle
//
// Run blocks until its context is canceled, then shuts down with a fresh
// context bounded by server.shutdown_timeout:
//
//	srv, err := server.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx)
package server
