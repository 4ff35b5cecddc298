// ABOUTME: Event names, wire frames, and the uniform response envelope
// ABOUTME: Every session event uses {success, data?, msg?} keyed by event name

package events

import (
	"encoding/json"
	"fmt"
)

// Session event names. Responses reuse the name of the event that triggered
// them; broadcasts reuse the name of the event being fanned out.
const (
	EventNewConversation  = "newConversation"
	EventGetConversations = "getConversations"
	EventNewMessage       = "newMessage"
	EventGetMessages      = "getMessages"
	EventUpdateProfile    = "updateProfile"
	EventGetContacts      = "getContacts"

	// EventError is used when an inbound frame is too malformed to carry
	// an event name to reply on.
	EventError = "error"
)

// Inbound is the wire frame for client-to-server events.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound is the uniform response envelope for server-to-client events.
type Outbound struct {
	Event   string `json:"event"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

// OK builds a success envelope for the given event.
func OK(event string, data any) Outbound {
	return Outbound{Event: event, Success: true, Data: data}
}

// Fail builds a failure envelope for the given event.
func Fail(event, msg string) Outbound {
	return Outbound{Event: event, Success: false, Msg: msg}
}

// Encode marshals the envelope for transport.
func (o Outbound) Encode() ([]byte, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", o.Event, err)
	}
	return payload, nil
}
