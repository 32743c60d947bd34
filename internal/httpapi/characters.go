package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/voice"
)

type characterRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Role        string `json:"role,omitempty"`
	Personality string `json:"personality,omitempty"`
	SpeechStyle string `json:"speech_style,omitempty"`
	VoiceName   string `json:"voice_name,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (req *characterRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name is required")
	}
	if v := strings.TrimSpace(req.VoiceName); v != "" {
		if _, ok := voice.LookupProfile(v); !ok {
			return errors.New("unknown voice: " + v)
		}
	}
	return nil
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c := character.Character{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Role:        req.Role,
		Personality: req.Personality,
		SpeechStyle: req.SpeechStyle,
		VoiceName:   strings.TrimSpace(req.VoiceName),
		IsActive:    true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	created, err := s.characters.Create(r.Context(), c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	list, err := s.characters.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"characters": list})
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.characters.Get(r.Context(), id)
	if errors.Is(err, character.ErrNotFound) {
		respondError(w, http.StatusNotFound, "character_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req characterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	existing, err := s.characters.Get(r.Context(), id)
	if errors.Is(err, character.ErrNotFound) {
		respondError(w, http.StatusNotFound, "character_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.Role = req.Role
	existing.Personality = req.Personality
	existing.SpeechStyle = req.SpeechStyle
	existing.VoiceName = strings.TrimSpace(req.VoiceName)
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	updated, err := s.characters.Update(r.Context(), existing)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.characters.Delete(r.Context(), id)
	if errors.Is(err, character.ErrNotFound) {
		respondError(w, http.StatusNotFound, "character_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}
