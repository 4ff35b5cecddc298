// Package events defines the session event protocol.
//
// # Wire format
//
// Clients send frames of the form {"event": name, "data": {...}} and receive
// the uniform envelope {"event": name, "success": bool, "data"?, "msg"?}.
// Responses and broadcasts reuse the name of the event they answer.
//
// # Validation
//
// Each event has a typed payload struct with validation tags. Decode rejects
// malformed JSON and schema violations at the dispatch boundary, before any
// business logic or store access, so handlers can assume well-formed input.
//
// # Dispatch
//
// The Dispatcher maps event names to handlers. Unknown events, bad frames,
// and handler panics all surface as failure envelopes to the triggering
// session only; no inbound event can terminate a session or the process.
package events
