package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Poller re-fetches the bell notification list on an interval while a
// session is active. A poll is skipped when the previous one is still in
// flight, so a slow backend never causes overlapping requests. The poller
// is stopped when the session ends or the application shuts down; no timer
// outlives it.
type Poller struct {
	store  *Store
	logger *zap.Logger

	pollInterval time.Duration

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	inFlight  atomic.Bool
}

// NewPoller creates a notification poller with the default 30s interval.
func NewPoller(store *Store, logger *zap.Logger) *Poller {
	return &Poller{
		store:        store,
		logger:       logger,
		pollInterval: 30 * time.Second,
	}
}

// SetInterval overrides the poll interval, for tests.
func (p *Poller) SetInterval(d time.Duration) {
	p.pollInterval = d
}

// Start starts the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("notification poller is already running")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.isRunning = true

	p.logger.Info("Notification poller started",
		zap.Duration("poll_interval", p.pollInterval))

	go p.pollLoop()
	return nil
}

// Stop cancels the polling loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}
	p.isRunning = false
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Notification poller stopped")
}

// Name returns the worker name for identification.
func (p *Poller) Name() string {
	return "NotificationPoller"
}

func (p *Poller) pollLoop() {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Poll loop context cancelled")
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("Previous poll still in flight, skipping tick")
		return
	}
	defer p.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(p.ctx, 10*time.Second)
	defer cancel()

	if err := p.store.FetchNotifications(ctx); err != nil {
		p.logger.Warn("Notification poll failed", zap.Error(err))
	}
}
