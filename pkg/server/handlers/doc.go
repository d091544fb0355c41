// Package handlers implements the decision API endpoints.
//
// # Endpoints
//
//	POST /v1/decisions/evaluate   run the rule registry over one context
//	POST /v1/decisions/risk       score one telemetry batch
//	POST /v1/decisions/harmonize  combine two policy rule sets
//	GET  /health                  liveness probe
//	GET  /ready                   readiness probe with component checks
//
// Requests failing validation receive a 400 with one entry per invalid
// field, addressed by JSON path (e.g. "atoms[3].severity"). Decision
// outcomes are never errors: a failing evaluation or a critical risk score
// still returns 200 with the decision document.
package handlers
