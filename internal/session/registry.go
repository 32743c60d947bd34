package session

import (
	"context"
	"log/slog"
	"sync"
)

// Registry maps live sessions to their transport connections and keeps a
// secondary index from user id to that user's active sessions. One mutex
// guards both maps so a lookup never observes a half-updated pair.
type Registry struct {
	mu               sync.RWMutex
	conns            map[string]Conn
	sessionsByUserID map[string]map[string]struct{}
	logger           *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:            make(map[string]Conn),
		sessionsByUserID: make(map[string]map[string]struct{}),
		logger:           logger.With(slog.String("component", "registry")),
	}
}

// Register stores the connection under sessionID, replacing any previous
// entry. Replacement is the reconnect path; the caller must have closed the
// prior connection first.
func (r *Registry) Register(sessionID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[sessionID]; ok {
		r.removeUserIndex(prev.UserID(), sessionID)
	}
	r.conns[sessionID] = conn

	if userID := conn.UserID(); userID != "" {
		set, ok := r.sessionsByUserID[userID]
		if !ok {
			set = make(map[string]struct{})
			r.sessionsByUserID[userID] = set
		}
		set[sessionID] = struct{}{}
	}

	r.logger.Debug("connection registered",
		slog.String("session_id", sessionID),
		slog.String("user_id", conn.UserID()))
}

// Unregister removes the entry and cleans the user index. Missing sessions
// are a logged no-op.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[sessionID]
	if !ok {
		r.logger.Warn("unregister for unknown session", slog.String("session_id", sessionID))
		return
	}
	delete(r.conns, sessionID)
	r.removeUserIndex(conn.UserID(), sessionID)

	r.logger.Debug("connection unregistered", slog.String("session_id", sessionID))
}

// TryGet returns the live connection for sessionID, if any.
func (r *Registry) TryGet(sessionID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[sessionID]
	return conn, ok
}

// IsConnected reports whether a live connection exists for sessionID.
func (r *Registry) IsConnected(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[sessionID]
	return ok
}

// SendText forwards text to the session's connection. Delivery is best
// effort: a missing session drops the payload with a warning.
func (r *Registry) SendText(ctx context.Context, sessionID, text string) error {
	conn, ok := r.TryGet(sessionID)
	if !ok {
		r.logger.Warn("text send dropped, no connection", slog.String("session_id", sessionID))
		return nil
	}
	return conn.SendText(ctx, text)
}

// SendBinary forwards a binary payload to the session's connection, dropping
// it with a warning when no connection is registered.
func (r *Registry) SendBinary(ctx context.Context, sessionID string, data []byte) error {
	conn, ok := r.TryGet(sessionID)
	if !ok {
		r.logger.Warn("binary send dropped, no connection", slog.String("session_id", sessionID))
		return nil
	}
	return conn.SendBinary(ctx, data)
}

// SessionIDsByUserID returns the user's active session ids, for fan-out.
func (r *Registry) SessionIDsByUserID(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.sessionsByUserID[userID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// ActiveCount returns the number of registered connections.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// removeUserIndex must be called with the write lock held.
func (r *Registry) removeUserIndex(userID, sessionID string) {
	if userID == "" {
		return
	}
	set, ok := r.sessionsByUserID[userID]
	if !ok {
		return
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.sessionsByUserID, userID)
	}
}
