// ABOUTME: Tests for event dispatch and envelope handling
// ABOUTME: Covers routing, unknown events, bad frames, and panic recovery

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/ripple/internal/auth"
	"github.com/2389/ripple/internal/session"
)

func newDispatcherSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(auth.Identity{ID: "alice", Name: "Alice"}, 8)
}

func receiveEnvelope(t *testing.T, sess *session.Session) Outbound {
	t.Helper()
	select {
	case raw := <-sess.Outbox():
		var env Outbound
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected an envelope on the session outbox")
		return Outbound{}
	}
}

func TestDispatcher_RoutesToHandler(t *testing.T) {
	d := NewDispatcher(nil)
	sess := newDispatcherSession(t)

	var gotData json.RawMessage
	d.Handle("ping", func(ctx context.Context, s *session.Session, data json.RawMessage) {
		gotData = data
		d.Reply(s, OK("ping", map[string]string{"echo": "pong"}))
	})

	d.Dispatch(context.Background(), sess, []byte(`{"event":"ping","data":{"n":1}}`))

	assert.JSONEq(t, `{"n":1}`, string(gotData))
	env := receiveEnvelope(t, sess)
	assert.Equal(t, "ping", env.Event)
	assert.True(t, env.Success)
}

func TestDispatcher_UnknownEvent(t *testing.T) {
	d := NewDispatcher(nil)
	sess := newDispatcherSession(t)

	d.Dispatch(context.Background(), sess, []byte(`{"event":"nope","data":{}}`))

	env := receiveEnvelope(t, sess)
	assert.Equal(t, "nope", env.Event)
	assert.False(t, env.Success)
	assert.Equal(t, "unknown event", env.Msg)
}

func TestDispatcher_BadFrame(t *testing.T) {
	d := NewDispatcher(nil)
	sess := newDispatcherSession(t)

	d.Dispatch(context.Background(), sess, []byte(`this is not json`))

	env := receiveEnvelope(t, sess)
	assert.Equal(t, EventError, env.Event)
	assert.False(t, env.Success)
}

func TestDispatcher_MissingEventName(t *testing.T) {
	d := NewDispatcher(nil)
	sess := newDispatcherSession(t)

	d.Dispatch(context.Background(), sess, []byte(`{"data":{}}`))

	env := receiveEnvelope(t, sess)
	assert.Equal(t, EventError, env.Event)
	assert.False(t, env.Success)
}

func TestDispatcher_RecoverFromPanic(t *testing.T) {
	d := NewDispatcher(nil)
	sess := newDispatcherSession(t)

	d.Handle("boom", func(ctx context.Context, s *session.Session, data json.RawMessage) {
		panic("handler exploded")
	})

	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), sess, []byte(`{"event":"boom"}`))
	})

	env := receiveEnvelope(t, sess)
	assert.Equal(t, "boom", env.Event)
	assert.False(t, env.Success)
	assert.Equal(t, "internal error", env.Msg)
}

func TestDecode_NewConversationPayload(t *testing.T) {
	var p NewConversationPayload
	err := Decode(json.RawMessage(`{"type":"direct","participants":["a","b"]}`), &p)
	require.NoError(t, err)
	assert.Equal(t, "direct", p.Type)
	assert.Equal(t, []string{"a", "b"}, p.Participants)
}

func TestDecode_RejectsBadType(t *testing.T) {
	var p NewConversationPayload
	err := Decode(json.RawMessage(`{"type":"broadcast","participants":["a"]}`), &p)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_RejectsEmptyParticipants(t *testing.T) {
	var p NewConversationPayload
	err := Decode(json.RawMessage(`{"type":"group","participants":[]}`), &p)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	var p NewMessagePayload
	err := Decode(json.RawMessage(`{`), &p)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecode_MessageNeedsContentOrAttachment(t *testing.T) {
	var p NewMessagePayload
	err := Decode(json.RawMessage(`{"conversationId":"c1","sender":{"id":"a"}}`), &p)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = Decode(json.RawMessage(`{"conversationId":"c1","sender":{"id":"a"},"attachment":"x.png"}`), &p)
	assert.NoError(t, err)
}

func TestDecode_UpdateProfileNeedsAField(t *testing.T) {
	var p UpdateProfilePayload
	err := Decode(json.RawMessage(`{}`), &p)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = Decode(json.RawMessage(`{"avatar":"a.png"}`), &p)
	assert.NoError(t, err)
}

func TestDecode_EmptyPayloadDefaultsToObject(t *testing.T) {
	var p GetContactsPayload
	assert.NoError(t, Decode(nil, &p))
}
