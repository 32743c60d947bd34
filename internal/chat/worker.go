package chat

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool runs accepted chat commands in the background. The submitting
// request never waits on a run; each worker owns its own error boundary via
// the orchestrator.
type WorkerPool struct {
	orchestrator *Orchestrator
	queue        chan Command
	wg           sync.WaitGroup
	logger       *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewWorkerPool(orchestrator *Orchestrator, workers, queueSize int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &WorkerPool{
		orchestrator: orchestrator,
		queue:        make(chan Command, queueSize),
		logger:       logger.With(slog.String("component", "chat.workers")),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

func (p *WorkerPool) work() {
	defer p.wg.Done()
	for cmd := range p.queue {
		// Runs detach from the request context: a finished HTTP request
		// must not cancel its pipeline.
		p.orchestrator.Run(context.Background(), cmd)
	}
}

// Submit enqueues a command for background processing. It reports false
// when the pool is shut down or the queue is full; the caller translates
// that into a rejection.
func (p *WorkerPool) Submit(cmd Command) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.queue <- cmd:
		return true
	default:
		p.logger.Warn("queue full, rejecting chat request",
			slog.String("session_id", cmd.SessionID))
		return false
	}
}

// Shutdown stops intake and waits for in-flight runs to finish or ctx to
// expire.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
