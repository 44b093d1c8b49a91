package traffic

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// LoopState is the lifecycle of a TimedLoop.
type LoopState int32

const (
	LoopIdle LoopState = iota
	LoopRunning
	LoopCompleted // duration elapsed or single pass done
	LoopCancelled // shutdown requested
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopRunning:
		return "running"
	case LoopCompleted:
		return "completed"
	case LoopCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Operation performs one full pass and returns the bytes it moved.
type Operation func() (int64, error)

// LoopConfig parameterizes a TimedLoop.
type LoopConfig struct {
	Mode        Mode
	Path        string        // removed on exit in write mode
	Duration    time.Duration // 0 runs a single pass
	LogInterval time.Duration
}

// LoopResult summarizes a finished loop.
type LoopResult struct {
	State    LoopState
	Passes   int
	Failures int
	Bytes    int64
	Elapsed  time.Duration
}

// TimedLoop repeats an Operation until its duration elapses or shutdown is
// requested, logging throughput once per interval. Termination is checked
// only between passes.
type TimedLoop struct {
	cfg      LoopConfig
	op       Operation
	run      *RunState
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
	state    atomic.Int32
}

// LoopOption configures a TimedLoop.
type LoopOption func(*TimedLoop)

// WithLoopLogger sets the logger.
func WithLoopLogger(logger *zap.Logger) LoopOption {
	return func(l *TimedLoop) {
		l.logger = logger
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) LoopOption {
	return func(l *TimedLoop) {
		l.recorder = r
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LoopOption {
	return func(l *TimedLoop) {
		l.now = now
	}
}

// NewTimedLoop creates an idle loop around op.
func NewTimedLoop(cfg LoopConfig, op Operation, run *RunState, opts ...LoopOption) *TimedLoop {
	l := &TimedLoop{
		cfg:      cfg,
		op:       op,
		run:      run,
		logger:   zap.NewNop(),
		recorder: NopRecorder(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.run == nil {
		l.run = NewRunState()
	}
	return l
}

// State returns the loop's current state.
func (l *TimedLoop) State() LoopState {
	return LoopState(l.state.Load())
}

// Run executes passes until the loop completes or is cancelled. It always
// performs at least one pass.
func (l *TimedLoop) Run() LoopResult {
	l.state.Store(int32(LoopRunning))

	mode := l.cfg.Mode
	start := l.now()
	acc := NewThroughputAccumulator(l.cfg.LogInterval, start)

	var result LoopResult
	for {
		n, err := l.op()
		result.Passes++
		result.Bytes += n
		l.recorder.AddBytes(mode, n)
		l.recorder.PassCompleted(mode, err)
		if err != nil {
			result.Failures++
			l.logger.Error("pass failed",
				zap.Int("pass", result.Passes),
				zap.Int64("bytes", n),
				zap.Error(err))
		}

		now := l.now()
		if sample, ok := acc.Add(n, now); ok {
			bps := sample.BytesPerSecond()
			l.logger.Info(fmt.Sprintf("Bytes %s per second: %s", mode.participle(), formatCount(bps)),
				zap.Int64("bytes_per_second", bps),
				zap.Duration("interval", sample.Interval))
			l.recorder.ObserveRate(mode, bps)
		}

		if l.run.ShutdownRequested() {
			result.State = LoopCancelled
			break
		}
		if l.cfg.Duration <= 0 || now.Sub(start) >= l.cfg.Duration {
			result.State = LoopCompleted
			break
		}
	}

	result.Elapsed = l.now().Sub(start)

	if mode == ModeWrite && l.cfg.Path != "" {
		if err := removeFile(l.cfg.Path); err != nil {
			l.logger.Warn("failed to remove test file", zap.String("path", l.cfg.Path), zap.Error(err))
		}
	}

	if l.cfg.Duration > 0 {
		l.logger.Info(fmt.Sprintf("%s data complete after %d seconds", mode, int64(result.Elapsed/time.Second)),
			zap.Int("passes", result.Passes),
			zap.String("state", result.State.String()))
	}

	l.state.Store(int32(result.State))
	return result
}
