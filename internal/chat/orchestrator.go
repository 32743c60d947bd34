package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dayeon-dev/aria/internal/protocol"
	"github.com/dayeon-dev/aria/internal/session"
)

// State names one pipeline stage. Failed is absorbing and reachable only
// from the validation and preprocessing stages; persistence and dispatch
// failures are soft and still reach Done.
type State string

const (
	StateAccepted      State = "accepted"
	StateValidating    State = "validating"
	StatePreprocessing State = "preprocessing"
	StateGenerating    State = "generating"
	StateSynthesizing  State = "synthesizing"
	StatePersisting    State = "persisting"
	StateDispatching   State = "dispatching"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// StageObserver receives per-stage timings and run outcomes. It keeps the
// orchestrator free of metrics plumbing.
type StageObserver interface {
	StageCompleted(state State, elapsed time.Duration)
	RunCompleted(final State, cost float64, tokens int)
}

// NopObserver discards all observations.
type NopObserver struct{}

func (NopObserver) StageCompleted(State, time.Duration) {}
func (NopObserver) RunCompleted(State, float64, int)    {}

// Orchestrator drives one chat run through the pipeline stages. It owns the
// run's error boundary: failures never propagate to the caller.
type Orchestrator struct {
	validator    *Validator
	preprocessor *Preprocessor
	generator    *Generator
	synthesis    *SynthesisCoordinator
	persister    *Persister
	dispatcher   *Dispatcher
	registry     *session.Registry
	observer     StageObserver
	logger       *slog.Logger
}

func NewOrchestrator(
	validator *Validator,
	preprocessor *Preprocessor,
	generator *Generator,
	synthesis *SynthesisCoordinator,
	persister *Persister,
	dispatcher *Dispatcher,
	registry *session.Registry,
	observer StageObserver,
	logger *slog.Logger,
) *Orchestrator {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Orchestrator{
		validator:    validator,
		preprocessor: preprocessor,
		generator:    generator,
		synthesis:    synthesis,
		persister:    persister,
		dispatcher:   dispatcher,
		registry:     registry,
		observer:     observer,
		logger:       logger.With(slog.String("component", "chat.orchestrator")),
	}
}

// Run executes the full pipeline for one command. It never returns an
// error; hard failures are logged, reported to the client when a connection
// is still live, and end the run.
func (o *Orchestrator) Run(ctx context.Context, cmd Command) {
	start := time.Now()
	logger := o.logger.With(
		slog.String("request_id", cmd.RequestID),
		slog.String("session_id", cmd.SessionID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic", slog.Any("panic", r))
			o.observer.RunCompleted(StateFailed, 0, 0)
			o.notifyFailure(ctx, cmd.SessionID)
		}
	}()

	logger.Info("chat run accepted", slog.String("character_id", cmd.CharacterID))

	state := StateValidating
	if err := o.timed(state, func() error { return o.validator.Validate(ctx, cmd) }); err != nil {
		logger.Warn("validation failed", slog.Any("error", err))
		o.fail(ctx, cmd.SessionID)
		return
	}

	state = StatePreprocessing
	var pctx *Context
	if err := o.timed(state, func() error {
		var err error
		pctx, err = o.preprocessor.Preprocess(ctx, cmd)
		return err
	}); err != nil {
		logger.Error("preprocessing failed", slog.Any("error", err))
		o.fail(ctx, cmd.SessionID)
		return
	}

	state = StateGenerating
	var result *Result
	if err := o.timed(state, func() error {
		var err error
		result, err = o.generator.Generate(ctx, pctx)
		return err
	}); err != nil {
		logger.Error("generation failed", slog.Any("error", err))
		o.fail(ctx, cmd.SessionID)
		return
	}

	state = StateSynthesizing
	o.timed(state, func() error {
		o.synthesis.Apply(ctx, pctx, result)
		return nil
	})

	state = StatePersisting
	o.timed(state, func() error {
		o.persister.Persist(ctx, pctx, result)
		return nil
	})

	state = StateDispatching
	o.timed(state, func() error {
		o.dispatcher.Dispatch(ctx, pctx, result)
		return nil
	})

	state = StateDone
	o.observer.RunCompleted(state, result.Cost, result.TokensUsed)
	logger.Info("chat run done",
		slog.Int("segments", len(result.Segments)),
		slog.Int("tokens", result.TokensUsed),
		slog.Float64("cost", result.Cost),
		slog.Duration("elapsed", time.Since(start)))
}

func (o *Orchestrator) timed(state State, fn func() error) error {
	start := time.Now()
	err := fn()
	o.observer.StageCompleted(state, time.Since(start))
	return err
}

func (o *Orchestrator) fail(ctx context.Context, sessionID string) {
	o.observer.RunCompleted(StateFailed, 0, 0)
	o.notifyFailure(ctx, sessionID)
}

// notifyFailure sends a generic service error to the client if its
// connection is still alive.
func (o *Orchestrator) notifyFailure(ctx context.Context, sessionID string) {
	if sessionID == "" || !o.registry.IsConnected(sessionID) {
		return
	}
	env, err := protocol.NewEnvelope(protocol.TypeError, protocol.ErrorData{
		Message: "failed to process chat request",
	})
	if err != nil {
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := o.registry.SendText(ctx, sessionID, string(raw)); err != nil {
		o.logger.Warn("failed to notify client of error",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
}
