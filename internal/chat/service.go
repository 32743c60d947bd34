package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrRejected means the command could not be enqueued.
var ErrRejected = errors.New("chat: request rejected")

// Service is the accepting boundary of the pipeline. Accept validates
// synchronously so the caller gets an immediate verdict, then hands the run
// to the worker pool and returns; results surface only through pushes to
// the registry.
type Service struct {
	validator *Validator
	pool      *WorkerPool
	logger    *slog.Logger
}

func NewService(validator *Validator, pool *WorkerPool, logger *slog.Logger) *Service {
	return &Service{
		validator: validator,
		pool:      pool,
		logger:    logger.With(slog.String("component", "chat.service")),
	}
}

// Accept returns nil when the command was queued. Validation errors come
// back unwrapped so callers can map them to response codes.
func (s *Service) Accept(ctx context.Context, cmd Command) error {
	if err := s.validator.Validate(ctx, cmd); err != nil {
		return err
	}
	if !s.pool.Submit(cmd) {
		return fmt.Errorf("%w: worker queue unavailable", ErrRejected)
	}
	s.logger.Debug("chat request queued",
		slog.String("request_id", cmd.RequestID),
		slog.String("session_id", cmd.SessionID))
	return nil
}
