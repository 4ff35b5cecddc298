// Package ws is the websocket transport. It authenticates the handshake
// token before upgrading (bad tokens get a plain 401 and no session),
// registers the session, syncs its rooms, and then pumps frames between the
// connection and the event dispatcher.
//
// Each connection runs one read loop and one write pump. The write pump
// drains the session's outbox; because service code only ever queues
// non-blocking sends, a dead connection can never stall a broadcast.
package ws
