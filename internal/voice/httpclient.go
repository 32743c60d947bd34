package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dayeon-dev/aria/internal/audio"
)

// HTTPSynthesizer calls the speech provider's text-to-speech endpoint.
type HTTPSynthesizer struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

func NewHTTPSynthesizer(baseURL, apiKey string, logger *slog.Logger) (*HTTPSynthesizer, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("tts base url is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("tts api key is required")
	}
	return &HTTPSynthesizer{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With(slog.String("component", "tts")),
	}, nil
}

type ttsRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Style    string `json:"style,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	lang := req.Language
	if lang == "" {
		lang = req.Profile.DefaultLanguage
	}
	payload, err := json.Marshal(ttsRequest{
		Text:     req.Text,
		Language: lang,
		Style:    req.Style,
		Model:    req.Profile.Model,
	})
	if err != nil {
		return nil, err
	}

	url := s.baseURL + "/v1/text-to-speech/" + req.Profile.VoiceID
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-sup-api-key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts read audio: %w", err)
	}

	result := &SynthesisResult{
		Audio:       data,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if h := resp.Header.Get("X-Audio-Length"); h != "" {
		if v, err := strconv.ParseFloat(h, 32); err == nil {
			result.AudioLength = float32(v)
		}
	}
	if result.AudioLength == 0 {
		// Provider omitted the length header; probe the WAV container.
		if d, err := audio.ProbeWAVDuration(data); err == nil {
			result.AudioLength = d
		}
	}

	s.logger.Debug("synthesis done",
		slog.String("voice", req.Profile.Name),
		slog.String("style", req.Style),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}
