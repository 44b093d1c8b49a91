package traffic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// minStartupDelay is the settling time applied before every run.
const minStartupDelay = time.Second

// ErrAlreadyRunning is returned by Start while a previous run is active.
var ErrAlreadyRunning = errors.New("traffic: run already in progress")

// Controller owns the lifecycle of traffic runs: the startup delay, the
// worker pool, and cooperative shutdown.
type Controller struct {
	cfg      WorkloadConfig
	logger   *zap.Logger
	recorder Recorder
	minDelay time.Duration

	mu  sync.Mutex
	cur *run
}

type run struct {
	id      string
	state   *RunState
	pool    *Pool
	done    chan struct{}
	reports []WorkerReport
}

func (r *run) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerRecorder sets the recorder passed to every worker.
func WithControllerRecorder(r Recorder) ControllerOption {
	return func(c *Controller) {
		c.recorder = r
	}
}

// NewController creates a controller for cfg. No workers run until Start.
func NewController(cfg WorkloadConfig, logger *zap.Logger, opts ...ControllerOption) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		cfg:      cfg,
		logger:   logger,
		recorder: NopRecorder(),
		minDelay: minStartupDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start waits max(1s, StartupDelay) and then spawns the workers. It returns
// once the workers are launched; it does not wait for them. If Stop is
// called or ctx is cancelled during the delay the run is abandoned without
// spawning anything. Cancelling ctx after the workers started stops them
// like Stop does.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cur != nil && !c.cur.finished() {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	r := &run{
		id:    uuid.NewString(),
		state: NewRunState(),
		done:  make(chan struct{}),
	}
	c.cur = r
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			r.state.RequestShutdown()
		case <-r.done:
		}
	}()

	logger := c.logger.With(zap.String("run_id", r.id))
	delay := max(c.minDelay, c.cfg.StartupDelay)
	logger.Info("traffic run scheduled",
		zap.String("directory", c.cfg.Directory),
		zap.Duration("startup_delay", delay),
		zap.Int("workers", c.cfg.TotalThreads()),
		zap.Int("read_threads", c.cfg.Read.Threads),
		zap.Int("write_threads", c.cfg.Write.Threads))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-r.state.Done():
	case <-ctx.Done():
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		r.state.RequestShutdown()
	}
	if r.state.ShutdownRequested() {
		close(r.done)
		c.mu.Unlock()
		logger.Debug("startup delay interrupted, run abandoned")
		return nil
	}
	r.pool = Spawn(c.cfg, r.state, logger, c.recorder)
	c.mu.Unlock()

	logger.Info("traffic run started", zap.Int("workers", r.pool.Size()))

	go func() {
		r.reports = r.pool.Wait()
		close(r.done)
		logger.Info("traffic run finished", zap.Int("workers", len(r.reports)))
	}()

	return nil
}

// Stop requests shutdown of the current run and waits for its workers to
// exit. It is safe to call at any time and any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()

	if r == nil {
		return
	}

	if !r.state.ShutdownRequested() {
		c.logger.Info("stopping traffic run", zap.String("run_id", r.id))
	}
	r.state.RequestShutdown()
	<-r.done
}

// Done is closed when the current run has ended, either because every
// worker finished or because it was stopped. With no run it is closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cur == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.cur.done
}

// Wait blocks until the current run ends and returns its worker reports.
func (c *Controller) Wait() []WorkerReport {
	c.mu.Lock()
	r := c.cur
	c.mu.Unlock()

	if r == nil {
		return nil
	}
	<-r.done
	return r.reports
}
