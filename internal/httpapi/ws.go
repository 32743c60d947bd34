package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dayeon-dev/aria/internal/chat"
	"github.com/dayeon-dev/aria/internal/protocol"
	"github.com/dayeon-dev/aria/internal/session"
)

// wsConn adapts a gorilla websocket connection to session.Conn. The write
// mutex serializes frames because gorilla permits one concurrent writer.
type wsConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	userID string
}

func (c *wsConn) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) SendBinary(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsConn) UserID() string { return c.userID }

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Close()
}

// handleWS upgrades the request, registers the connection and pumps inbound
// envelopes until the client goes away. A reconnect with an existing session
// id supersedes the old connection: the stale transport is closed before the
// new one becomes reachable.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = session.GenerateID()
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := &wsConn{ws: ws, userID: userID}

	if prev, ok := s.registry.TryGet(sessionID); ok {
		_ = prev.Close()
		s.registry.Unregister(sessionID)
		s.metrics.SessionEvents.WithLabelValues("superseded").Inc()
		s.logger.Info("session superseded", slog.String("session_id", sessionID))
	}
	s.registry.Register(sessionID, conn)
	s.metrics.ActiveConnections.Inc()
	s.metrics.SessionEvents.WithLabelValues("connected").Inc()

	ip, port := splitRemoteAddr(r.RemoteAddr)
	info := session.Info{
		SessionID:   sessionID,
		UserID:      userID,
		ClientIP:    ip,
		ClientPort:  port,
		ConnectedAt: time.Now().UTC(),
	}
	if err := s.sessions.Create(r.Context(), info); err != nil {
		s.logger.Warn("session persist failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}

	defer func() {
		_ = conn.Close()
		// Only tear down our own registration; a superseding connection may
		// already own the session id.
		if cur, ok := s.registry.TryGet(sessionID); ok && cur == conn {
			s.registry.Unregister(sessionID)
			if err := s.sessions.Delete(context.Background(), sessionID); err != nil {
				s.logger.Warn("session delete failed",
					slog.String("session_id", sessionID),
					slog.String("error", err.Error()))
			}
		}
		s.metrics.ActiveConnections.Dec()
		s.metrics.SessionEvents.WithLabelValues("disconnected").Inc()
		s.logger.Info("websocket closed", slog.String("session_id", sessionID))
	}()

	s.sendEnvelope(conn, protocol.TypeSession, protocol.SessionData{SessionID: sessionID})
	s.logger.Info("websocket connected",
		slog.String("session_id", sessionID),
		slog.String("user_id", userID))

	for {
		kind, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		env, err := protocol.ParseClientMessage(raw)
		if err != nil {
			s.metrics.WSMessages.WithLabelValues("in", "invalid").Inc()
			s.sendEnvelope(conn, protocol.TypeError, protocol.ErrorData{Message: err.Error()})
			continue
		}
		s.metrics.WSMessages.WithLabelValues("in", string(env.Type)).Inc()

		switch env.Type {
		case protocol.TypePing:
			s.sendEnvelope(conn, protocol.TypePong, nil)
		case protocol.TypePong:
			// Heartbeat reply, nothing to do.
		case protocol.TypeChat:
			s.acceptWSChat(r.Context(), conn, sessionID, env.Data)
		}
	}
}

func (s *Server) acceptWSChat(ctx context.Context, conn *wsConn, sessionID string, raw json.RawMessage) {
	var data protocol.ChatData
	if err := json.Unmarshal(raw, &data); err != nil {
		s.sendEnvelope(conn, protocol.TypeError, protocol.ErrorData{Message: "invalid chat data"})
		return
	}

	// Chat over the socket is always bound to the socket's own session.
	cmd := chat.NewCommand(sessionID, data.UserID, data.CharacterID, data.Message, data.Action, data.UseVoice)
	if err := s.chat.Accept(ctx, cmd); err != nil {
		s.sendEnvelope(conn, protocol.TypeError, protocol.ErrorData{Message: err.Error()})
	}
}

func (s *Server) sendEnvelope(conn *wsConn, t protocol.MessageType, data any) {
	env, err := protocol.NewEnvelope(t, data)
	if err != nil {
		s.logger.Warn("envelope encode failed", slog.String("type", string(t)))
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		s.logger.Warn("envelope marshal failed", slog.String("type", string(t)))
		return
	}
	if err := conn.SendText(context.Background(), string(raw)); err != nil {
		s.logger.Warn("envelope send failed",
			slog.String("type", string(t)),
			slog.String("error", err.Error()))
		return
	}
	s.metrics.WSMessages.WithLabelValues("out", string(t)).Inc()
}

func splitRemoteAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	return host, port
}
