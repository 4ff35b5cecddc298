// Package session tracks active authenticated connections.
//
// A Session is created after a successful token handshake and holds the
// verified identity immutably for the connection's lifetime, plus a buffered
// outbox the transport drains. Sends are non-blocking: a slow consumer drops
// events rather than stalling a broadcast.
//
// The Registry is the process-wide "who is online" table, keyed by user ID
// with one entry per device. Lifecycle runs from process start to shutdown;
// entries are cleared per session on disconnect, and unregistering twice is
// a no-op.
package session
