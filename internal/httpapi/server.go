package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/chat"
	"github.com/dayeon-dev/aria/internal/config"
	"github.com/dayeon-dev/aria/internal/observability"
	"github.com/dayeon-dev/aria/internal/session"
	"github.com/dayeon-dev/aria/internal/user"
)

// Server exposes the REST surface and the websocket endpoint. Chat
// submissions are acknowledged here and processed by the worker pool.
type Server struct {
	cfg        config.Config
	registry   *session.Registry
	sessions   session.Store
	chat       *chat.Service
	characters character.Store
	users      user.Store
	metrics    *observability.Metrics
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

func New(
	cfg config.Config,
	registry *session.Registry,
	sessions session.Store,
	chatService *chat.Service,
	characters character.Store,
	users user.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Server {
	return &Server{
		cfg:        cfg,
		registry:   registry,
		sessions:   sessions,
		chat:       chatService,
		characters: characters,
		users:      users,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "httpapi")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Non-browser clients
				// omit Origin and pass.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/ws", s.handleWS)

	r.Post("/v1/chat", s.handleSubmitChat)

	r.Post("/v1/characters", s.handleCreateCharacter)
	r.Get("/v1/characters", s.handleListCharacters)
	r.Get("/v1/characters/{id}", s.handleGetCharacter)
	r.Put("/v1/characters/{id}", s.handleUpdateCharacter)
	r.Delete("/v1/characters/{id}", s.handleDeleteCharacter)

	r.Post("/v1/users", s.handleCreateUser)
	r.Get("/v1/users/{id}", s.handleGetUser)
	r.Delete("/v1/users/{id}", s.handleDeleteUser)

	r.Get("/v1/voices", s.handleListVoices)
	r.Get("/v1/perf/pipeline", s.handlePerfPipeline)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type submitChatRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	UserID      string `json:"user_id"`
	CharacterID string `json:"character_id"`
	Message     string `json:"message"`
	Action      string `json:"action,omitempty"`
	UseVoice    bool   `json:"use_voice"`
}

type submitChatResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// handleSubmitChat validates and enqueues a chat command. The response is an
// acknowledgement only; segments arrive over the session's websocket.
func (s *Server) handleSubmitChat(w http.ResponseWriter, r *http.Request) {
	var req submitChatRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cmd := chat.NewCommand(req.SessionID, req.UserID, req.CharacterID, req.Message, req.Action, req.UseVoice)
	if err := s.chat.Accept(r.Context(), cmd); err != nil {
		status, code := chatErrorStatus(err)
		respondError(w, status, code, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, submitChatResponse{
		RequestID: cmd.RequestID,
		Status:    "accepted",
	})
}

func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, chat.ErrInvalidSession):
		return http.StatusUnauthorized, "invalid_session"
	case errors.Is(err, chat.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found"
	case errors.Is(err, chat.ErrCharacterNotFound):
		return http.StatusNotFound, "character_not_found"
	case errors.Is(err, chat.ErrRejected):
		return http.StatusServiceUnavailable, "overloaded"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
