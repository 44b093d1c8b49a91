// Package app ties the traffic controller to the process lifecycle: it is
// started once the service is ready and stopped on shutdown.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Controller is the part of traffic.Controller the app drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
}

// App owns the lifecycle hooks of the service.
type App struct {
	ctrl   Controller
	logger *zap.Logger
	ready  atomic.Bool

	mu          sync.Mutex
	cancel      context.CancelFunc
	startedOnce sync.Once
	started     chan struct{}
}

// New creates an App around ctrl.
func New(ctrl Controller, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{ctrl: ctrl, logger: logger, started: make(chan struct{})}
}

// OnReady starts the traffic run in the background and returns at once.
// Start errors are logged. OnShutdown cancels the context handed to Start,
// so a run still in its startup delay never spawns workers.
func (a *App) OnReady(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.ready.Store(true)
	go func() {
		defer a.startedOnce.Do(func() { close(a.started) })
		if err := a.ctrl.Start(ctx); err != nil {
			a.logger.Error("failed to start traffic", zap.Error(err))
		}
	}()
}

// OnShutdown stops the traffic run and waits for every worker to exit, or
// until ctx is done.
func (a *App) OnShutdown(ctx context.Context) error {
	a.ready.Store(false)

	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		if cancel != nil {
			<-a.started
		}
		a.ctrl.Stop()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("traffic stopped")
		return nil
	case <-ctx.Done():
		a.logger.Warn("traffic workers still running at shutdown deadline", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Started is closed once the Start call made by OnReady has returned,
// that is after the startup delay.
func (a *App) Started() <-chan struct{} {
	return a.started
}

// Ready reports whether OnReady has run and shutdown has not begun.
func (a *App) Ready() bool {
	return a.ready.Load()
}
