// ABOUTME: Routes inbound named events to registered handlers
// ABOUTME: Converts malformed frames and handler panics into failure envelopes

package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/2389/ripple/internal/session"
)

// HandlerFunc processes one inbound event for one session. Handlers reply
// by queuing envelopes on the session; they must never panic the process,
// so the dispatcher recovers and converts panics into failure envelopes.
type HandlerFunc func(ctx context.Context, sess *session.Session, data json.RawMessage)

// Dispatcher routes inbound events by name. One dispatcher serves all
// sessions; registration happens once at startup.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. Pass nil logger for default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger.With("component", "dispatcher"),
	}
}

// Handle registers a handler for an event name. Later registrations replace
// earlier ones.
func (d *Dispatcher) Handle(event string, handler HandlerFunc) {
	d.handlers[event] = handler
}

// Dispatch decodes a raw frame and invokes the matching handler. Unknown
// events and unparseable frames produce failure envelopes on the session;
// nothing dispatched here can terminate the session or the process.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, raw []byte) {
	var frame Inbound
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
		d.logger.Debug("unparseable event frame",
			"session_id", sess.ID,
			"error", err)
		d.reply(sess, Fail(EventError, "invalid event frame"))
		return
	}

	handler, ok := d.handlers[frame.Event]
	if !ok {
		d.logger.Debug("unknown event",
			"session_id", sess.ID,
			"event", frame.Event)
		d.reply(sess, Fail(frame.Event, "unknown event"))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				"event", frame.Event,
				"session_id", sess.ID,
				"panic", r)
			d.reply(sess, Fail(frame.Event, "internal error"))
		}
	}()

	handler(ctx, sess, frame.Data)
}

// Reply queues an envelope on a session, logging drops for slow consumers.
func (d *Dispatcher) Reply(sess *session.Session, envelope Outbound) {
	d.reply(sess, envelope)
}

func (d *Dispatcher) reply(sess *session.Session, envelope Outbound) {
	payload, err := envelope.Encode()
	if err != nil {
		d.logger.Error("failed to encode envelope",
			"event", envelope.Event,
			"error", err)
		return
	}
	if !sess.Send(payload) {
		d.logger.Debug("dropped reply for slow session",
			"session_id", sess.ID,
			"event", envelope.Event)
	}
}
