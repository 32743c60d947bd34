package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/chat"
	"github.com/dayeon-dev/aria/internal/config"
	"github.com/dayeon-dev/aria/internal/conversation"
	"github.com/dayeon-dev/aria/internal/llm"
	"github.com/dayeon-dev/aria/internal/memory"
	"github.com/dayeon-dev/aria/internal/observability"
	"github.com/dayeon-dev/aria/internal/session"
	"github.com/dayeon-dev/aria/internal/user"
	"github.com/dayeon-dev/aria/internal/voice"
)

// Each test gets its own metrics namespace because promauto registers into
// the process-global registry.
var metricsSeq atomic.Int64

func testMetrics() *observability.Metrics {
	return observability.NewMetrics(fmt.Sprintf("test_httpapi_%d", metricsSeq.Add(1)))
}

type testServer struct {
	http     *httptest.Server
	registry *session.Registry
	sessions session.Store
	llm      *llm.MockClient
}

func newTestServer(t *testing.T, reply string) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := session.NewInMemoryStore()
	if err := sessions.Create(ctx, session.Info{SessionID: "sess1", UserID: "user1"}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	users := user.NewInMemoryStore()
	if _, err := users.Create(ctx, user.User{ID: "user1", Username: "dana", IsActive: true}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	characters := character.NewInMemoryStore()
	if _, err := characters.Create(ctx, character.Character{
		ID:        "char1",
		Name:      "Haru",
		Role:      "companion",
		VoiceName: "Haru",
		IsActive:  true,
	}); err != nil {
		t.Fatalf("create character: %v", err)
	}

	registry := session.NewRegistry(logger)
	history := conversation.NewInMemoryStore()
	memories := memory.NewInMemoryClient()
	mock := llm.NewMockClient(reply, 100)

	validator := chat.NewValidator(sessions, users, characters, logger)
	preprocessor := chat.NewPreprocessor(characters, history, memories, 20, 3, logger)
	generator := chat.NewGenerator(mock, chat.GenerationSettings{}, logger)
	coordinator := chat.NewSynthesisCoordinator(voice.NewMockSynthesizer(), logger)
	persister := chat.NewPersister(history, memories, logger)
	dispatcher := chat.NewDispatcher(registry, logger)
	orchestrator := chat.NewOrchestrator(validator, preprocessor, generator, coordinator, persister, dispatcher, registry, nil, logger)
	pool := chat.NewWorkerPool(orchestrator, 1, 8, logger)
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pool.Shutdown(shutdownCtx)
	})
	service := chat.NewService(validator, pool, logger)

	cfg := config.Config{BindAddr: ":0", AllowAnyOrigin: true}
	srv := New(cfg, registry, sessions, service, characters, users, testMetrics(), logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testServer{http: ts, registry: registry, sessions: sessions, llm: mock}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t, "hello")

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.http.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestSubmitChatAccepted(t *testing.T) {
	ts := newTestServer(t, "[happy] sure")

	resp := postJSON(t, ts.http.URL+"/v1/chat", submitChatRequest{
		SessionID:   "sess1",
		UserID:      "user1",
		CharacterID: "char1",
		Message:     "hello",
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var ack submitChatResponse
	decodeBody(t, resp, &ack)
	if ack.RequestID == "" {
		t.Fatalf("expected a request id")
	}
	if ack.Status != "accepted" {
		t.Fatalf("status = %q, want accepted", ack.Status)
	}
}

func TestSubmitChatValidationErrors(t *testing.T) {
	ts := newTestServer(t, "hello")

	cases := []struct {
		name string
		req  submitChatRequest
		want int
		code string
	}{
		{
			name: "unknown session",
			req:  submitChatRequest{SessionID: "ghost", UserID: "user1", CharacterID: "char1", Message: "hi"},
			want: http.StatusUnauthorized,
			code: "invalid_session",
		},
		{
			name: "unknown user",
			req:  submitChatRequest{UserID: "nobody", CharacterID: "char1", Message: "hi"},
			want: http.StatusNotFound,
			code: "user_not_found",
		},
		{
			name: "unknown character",
			req:  submitChatRequest{UserID: "user1", CharacterID: "ghost", Message: "hi"},
			want: http.StatusNotFound,
			code: "character_not_found",
		},
		{
			name: "empty message",
			req:  submitChatRequest{UserID: "user1", CharacterID: "char1", Message: "   "},
			want: http.StatusBadRequest,
			code: "empty_message",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.http.URL+"/v1/chat", tc.req)
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
			var errResp errorResponse
			decodeBody(t, resp, &errResp)
			if errResp.Code != tc.code {
				t.Fatalf("code = %q, want %q", errResp.Code, tc.code)
			}
		})
	}
}

func TestSubmitChatEmptyBody(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp, err := http.Post(ts.http.URL+"/v1/chat", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCharacterCRUD(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp := postJSON(t, ts.http.URL+"/v1/characters", characterRequest{
		Name:        "Miya",
		Role:        "navigator",
		Personality: "calm",
		VoiceName:   "Miya",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created character.Character
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !created.IsActive {
		t.Fatalf("new character should default to active")
	}

	getResp, err := http.Get(ts.http.URL + "/v1/characters/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var fetched character.Character
	decodeBody(t, getResp, &fetched)
	if fetched.Name != "Miya" {
		t.Fatalf("name = %q, want Miya", fetched.Name)
	}

	updateBody, _ := json.Marshal(characterRequest{Name: "Miya", Role: "pilot", VoiceName: "Miya"})
	updateReq, _ := http.NewRequest(http.MethodPut, ts.http.URL+"/v1/characters/"+created.ID, bytes.NewReader(updateBody))
	updateReq.Header.Set("Content-Type", "application/json")
	updateResp, err := http.DefaultClient.Do(updateReq)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var updated character.Character
	decodeBody(t, updateResp, &updated)
	if updated.Role != "pilot" {
		t.Fatalf("role = %q, want pilot", updated.Role)
	}

	delReq, _ := http.NewRequest(http.MethodDelete, ts.http.URL+"/v1/characters/"+created.ID, nil)
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", delResp.StatusCode)
	}

	missing, err := http.Get(ts.http.URL + "/v1/characters/" + created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", missing.StatusCode)
	}
}

func TestCreateCharacterRejectsUnknownVoice(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp := postJSON(t, ts.http.URL+"/v1/characters", characterRequest{Name: "Nova", VoiceName: "NoSuchVoice"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp := postJSON(t, ts.http.URL+"/v1/users", userRequest{Username: "mira", Email: "mira@example.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created user.User
	decodeBody(t, resp, &created)
	if created.ID == "" || created.Username != "mira" {
		t.Fatalf("unexpected user: %+v", created)
	}

	getResp, err := http.Get(ts.http.URL + "/v1/users/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", getResp.StatusCode)
	}

	delReq, _ := http.NewRequest(http.MethodDelete, ts.http.URL+"/v1/users/"+created.ID, nil)
	delResp, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()

	missing, err := http.Get(ts.http.URL + "/v1/users/" + created.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", missing.StatusCode)
	}
}

func TestListVoices(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp, err := http.Get(ts.http.URL + "/v1/voices")
	if err != nil {
		t.Fatalf("get voices: %v", err)
	}
	var body listVoicesResponse
	decodeBody(t, resp, &body)
	if len(body.Voices) != 3 {
		t.Fatalf("len(voices) = %d, want 3", len(body.Voices))
	}
	for i := 1; i < len(body.Voices); i++ {
		if body.Voices[i-1].Name > body.Voices[i].Name {
			t.Fatalf("voices not sorted: %q before %q", body.Voices[i-1].Name, body.Voices[i].Name)
		}
	}
	if body.Voices[0].Model != "sona_speech_1" {
		t.Fatalf("model = %q, want sona_speech_1", body.Voices[0].Model)
	}
}

func TestPerfPipeline(t *testing.T) {
	ts := newTestServer(t, "hello")

	resp, err := http.Get(ts.http.URL + "/v1/perf/pipeline")
	if err != nil {
		t.Fatalf("get perf: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
}
