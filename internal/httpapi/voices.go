package httpapi

import (
	"net/http"
	"sort"

	"github.com/dayeon-dev/aria/internal/voice"
)

type voiceSummary struct {
	Name               string   `json:"name"`
	DisplayName        string   `json:"display_name"`
	SupportedLanguages []string `json:"supported_languages"`
	SupportedStyles    []string `json:"supported_styles"`
	DefaultLanguage    string   `json:"default_language"`
	DefaultStyle       string   `json:"default_style"`
	Model              string   `json:"model"`
}

type listVoicesResponse struct {
	Voices []voiceSummary `json:"voices"`
}

func (s *Server) handleListVoices(w http.ResponseWriter, _ *http.Request) {
	profiles := voice.Profiles()
	out := make([]voiceSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, voiceSummary{
			Name:               p.Name,
			DisplayName:        p.DisplayName,
			SupportedLanguages: p.SupportedLanguages,
			SupportedStyles:    p.SupportedStyles,
			DefaultLanguage:    p.DefaultLanguage,
			DefaultStyle:       p.DefaultStyle,
			Model:              p.Model,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	respondJSON(w, http.StatusOK, listVoicesResponse{Voices: out})
}
