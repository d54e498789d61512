package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Worker is the common contract for background resources with a start/stop
// lifecycle tied to the session (the notification poller, the OAuth
// callback listener).
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// WorkerManager owns the lifecycle of the background workers so that
// teardown on logout or shutdown is guaranteed and no timer fires against
// a dead session.
type WorkerManager struct {
	mu      sync.Mutex
	workers []Worker
	logger  *zap.Logger
}

// NewWorkerManager creates an empty manager.
func NewWorkerManager(logger *zap.Logger) *WorkerManager {
	return &WorkerManager{logger: logger}
}

// Register adds a worker to be managed.
func (m *WorkerManager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
}

// StartAll starts every registered worker, aborting on the first failure.
func (m *WorkerManager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workers {
		if err := w.Start(ctx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("name", w.Name()), zap.Error(err))
			return err
		}
		m.logger.Debug("Worker started", zap.String("name", w.Name()))
	}
	return nil
}

// StopAll stops the workers in reverse registration order.
func (m *WorkerManager) StopAll() {
	m.mu.Lock()
	workers := make([]Worker, len(m.workers))
	copy(workers, m.workers)
	m.mu.Unlock()

	for i := len(workers) - 1; i >= 0; i-- {
		workers[i].Stop()
		m.logger.Debug("Worker stopped", zap.String("name", workers[i].Name()))
	}
}
