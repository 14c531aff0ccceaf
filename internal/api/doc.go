// Package api is the HTTP/JSON façade in front of the in-memory database
// core. It exposes table administration (create, drop, list, stats),
// row mutation (insert, update, delete, get), and the five-shape search
// coordinator over a single /api/v1 route group, using Gin for routing
// and a standard {success, data, error} response envelope.
//
// Authentication (bearer token or X-API-Key, scoped by AuthLevel),
// per-endpoint-class rate limiting, CORS, request body size limits, and
// a MaxConnections-capped listener all live here as middleware, ahead
// of handlers that never see unauthenticated or over-quota traffic.
package api
