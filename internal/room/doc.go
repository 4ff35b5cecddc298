// Package room manages broadcast groups keyed by conversation ID.
//
// On connect a session's rooms are synchronized with its persisted
// conversation memberships; a store failure during that sync is logged and
// non-fatal, trading a missed-broadcast window for availability. When a
// conversation is created, only sessions currently registered for the
// invited participants are admitted immediately — participants who connect
// later pick the room up during their own connect-time sync.
//
// EmitToRoom encodes the envelope once and fans it out non-blocking: a
// session whose buffer is full drops the event rather than stalling the
// broadcast for the rest of the room.
package room
