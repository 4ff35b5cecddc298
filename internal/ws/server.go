// ABOUTME: Websocket transport: handshake auth, read loop, and write pump
// ABOUTME: Bad tokens are rejected with 401 before the upgrade ever happens

package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/2389/ripple/internal/auth"
	"github.com/2389/ripple/internal/events"
	"github.com/2389/ripple/internal/room"
	"github.com/2389/ripple/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Server upgrades authenticated HTTP requests to websocket sessions and
// pumps frames between the connection and the dispatcher.
type Server struct {
	verifier      auth.TokenVerifier
	registry      *session.Registry
	rooms         *room.Manager
	dispatcher    *events.Dispatcher
	sessionBuffer int
	upgrader      websocket.Upgrader
	logger        *slog.Logger
}

// NewServer creates the websocket transport. Pass nil logger for default.
func NewServer(verifier auth.TokenVerifier, registry *session.Registry, rooms *room.Manager, dispatcher *events.Dispatcher, sessionBuffer int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		verifier:      verifier,
		registry:      registry,
		rooms:         rooms,
		dispatcher:    dispatcher,
		sessionBuffer: sessionBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The token in the handshake is the access control; clients
			// connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP authenticates the handshake, upgrades the connection, and runs
// the session until the connection drops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := s.verifier.Verify(extractToken(r))
	if err != nil {
		s.logger.Info("handshake rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		s.logger.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := session.New(*identity, s.sessionBuffer)
	s.registry.Register(sess)

	// Connect-time room sync. A store failure here is non-fatal: the session
	// stays up and re-syncs on its next connect.
	if err := s.rooms.JoinConversationRooms(r.Context(), sess); err != nil {
		s.logger.Error("room sync failed on connect",
			"session_id", sess.ID,
			"user_id", identity.ID,
			"error", err)
	}

	s.logger.Info("session connected",
		"session_id", sess.ID,
		"user_id", identity.ID,
		"remote", r.RemoteAddr)

	go s.writePump(conn, sess)
	s.readLoop(conn, sess)
}

// extractToken pulls the token from the query string or a bearer header.
func extractToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// readLoop reads frames until the connection drops, dispatching each to the
// registered handlers. Cleanup runs exactly once when the loop exits.
func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session) {
	defer func() {
		s.registry.Unregister(sess)
		s.rooms.RemoveSession(sess)
		sess.Close()
		conn.Close()
		s.logger.Info("session disconnected",
			"session_id", sess.ID,
			"user_id", sess.Identity.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("read error", "session_id", sess.ID, "error", err)
			}
			return
		}
		s.dispatcher.Dispatch(sessionContext(sess), sess, raw)
	}
}

// sessionContext builds the per-dispatch context. Events outlive the
// triggering read, so the context is not tied to the request.
func sessionContext(sess *session.Session) context.Context {
	return auth.WithIdentity(context.Background(), &sess.Identity)
}

// writePump drains the session outbox to the connection and keeps the
// connection alive with pings. Exits when the outbox closes or a write fails.
func (s *Server) writePump(conn *websocket.Conn, sess *session.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sess.Outbox():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug("write error", "session_id", sess.ID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
