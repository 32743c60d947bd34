package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dayeon-dev/aria/internal/character"
	"github.com/dayeon-dev/aria/internal/chat"
	"github.com/dayeon-dev/aria/internal/config"
	"github.com/dayeon-dev/aria/internal/conversation"
	"github.com/dayeon-dev/aria/internal/httpapi"
	"github.com/dayeon-dev/aria/internal/llm"
	"github.com/dayeon-dev/aria/internal/memory"
	"github.com/dayeon-dev/aria/internal/observability"
	"github.com/dayeon-dev/aria/internal/reliability"
	"github.com/dayeon-dev/aria/internal/session"
	"github.com/dayeon-dev/aria/internal/user"
	"github.com/dayeon-dev/aria/internal/voice"
)

// BuildResult bundles the wired service with the handles main needs for
// serving and shutdown.
type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Registry *session.Registry
	Pool     *chat.WorkerPool
	Metrics  *observability.Metrics

	// Cleanup releases external resources (DB pools etc). Call it after the
	// worker pool has drained.
	Cleanup func() error
}

// Build wires every component from configuration. External backends are
// optional: without an API key or URL the corresponding component falls back
// to a local substitute so the server still runs end to end in dev.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	var closers []func() error
	cleanup := func() error {
		var errs []string
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}
	fail := func(err error) (*BuildResult, error) {
		_ = cleanup()
		return nil, err
	}

	// The database may still be coming up when the process starts; store
	// init retries with backoff instead of crash-looping.
	initStore := func(name string, init func() (func() error, error)) error {
		return reliability.Do(ctx, 5, 500*time.Millisecond, 5*time.Second, func() (error, bool) {
			closer, err := init()
			if err != nil {
				logger.Warn("store init failed, retrying",
					slog.String("store", name),
					slog.String("error", err.Error()))
				return fmt.Errorf("%s store init failed: %w", name, err), true
			}
			closers = append(closers, closer)
			return nil, false
		})
	}

	var sessions session.Store
	if err := initStore("session", func() (func() error, error) {
		var err error
		sessions, err = session.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return sessions.Close, nil
	}); err != nil {
		return fail(err)
	}

	var users user.Store
	if err := initStore("user", func() (func() error, error) {
		var err error
		users, err = user.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return users.Close, nil
	}); err != nil {
		return fail(err)
	}

	var characters character.Store
	if err := initStore("character", func() (func() error, error) {
		var err error
		characters, err = character.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return characters.Close, nil
	}); err != nil {
		return fail(err)
	}

	var history conversation.Store
	if err := initStore("conversation", func() (func() error, error) {
		var err error
		history, err = conversation.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return history.Close, nil
	}); err != nil {
		return fail(err)
	}

	var memories memory.Client
	if cfg.MemoryBaseURL != "" {
		memories = memory.NewHTTPClient(cfg.MemoryBaseURL, logger)
		logger.Info("memory backend: http", slog.String("base_url", cfg.MemoryBaseURL))
	} else {
		memories = memory.NewInMemoryClient()
		logger.Info("memory backend: in-memory")
	}

	var llmClient llm.Client
	if cfg.LLMAPIKey != "" {
		client, err := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, logger)
		if err != nil {
			return fail(fmt.Errorf("llm client init failed: %w", err))
		}
		llmClient = client
		logger.Info("llm backend: openai-compatible",
			slog.String("base_url", cfg.LLMBaseURL),
			slog.String("model", cfg.LLMModel))
	} else {
		llmClient = llm.NewMockClient("[neutral] I am running without a language model backend.", 0)
		logger.Warn("llm backend: mock (LLM_API_KEY not set)")
	}

	var synth voice.Synthesizer
	if cfg.TTSBaseURL != "" && cfg.TTSAPIKey != "" {
		s, err := voice.NewHTTPSynthesizer(cfg.TTSBaseURL, cfg.TTSAPIKey, logger)
		if err != nil {
			return fail(fmt.Errorf("synthesizer init failed: %w", err))
		}
		synth = s
		logger.Info("tts backend: http", slog.String("base_url", cfg.TTSBaseURL))
	} else {
		synth = voice.NewMockSynthesizer()
		logger.Warn("tts backend: mock (TTS_BASE_URL or TTS_API_KEY not set)")
	}

	registry := session.NewRegistry(logger)

	validator := chat.NewValidator(sessions, users, characters, logger)
	preprocessor := chat.NewPreprocessor(characters, history, memories, cfg.HistoryLimit, cfg.MemoryTopK, logger)
	generator := chat.NewGenerator(llmClient, chat.GenerationSettings{
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	}, logger)
	coordinator := chat.NewSynthesisCoordinator(synth, logger)
	persister := chat.NewPersister(history, memories, logger)
	dispatcher := chat.NewDispatcher(registry, logger)

	orchestrator := chat.NewOrchestrator(validator, preprocessor, generator, coordinator, persister, dispatcher, registry, metrics, logger)
	pool := chat.NewWorkerPool(orchestrator, cfg.ChatWorkers, cfg.ChatQueueSize, logger)
	service := chat.NewService(validator, pool, logger)

	api := httpapi.New(cfg, registry, sessions, service, characters, users, metrics, logger)

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Registry: registry,
		Pool:     pool,
		Metrics:  metrics,
		Cleanup:  cleanup,
	}, nil
}
