// Package middleware provides the HTTP middleware chain for the decision
// API: panic recovery, request IDs, structured request logging, metrics,
// CORS, and per-request timeouts.
//
// The intended order, outermost first:
//
//	recovery -> requestID -> logging -> metrics -> cors -> timeout -> handler
package middleware
