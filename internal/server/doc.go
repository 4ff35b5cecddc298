// Package server wires the ripple components together and owns the HTTP
// listener lifecycle: REST auth endpoints, the websocket upgrade path, and
// the health check, with graceful drain on shutdown.
package server
