package traffic

import (
	"sync"
	"sync/atomic"
)

// RunState is the shutdown flag shared by every worker of a run.
// It is set at most once and only read by the loops.
type RunState struct {
	shutdown atomic.Bool
	once     sync.Once
	done     chan struct{}
}

// NewRunState returns a state with shutdown not requested.
func NewRunState() *RunState {
	return &RunState{done: make(chan struct{})}
}

// RequestShutdown sets the flag. Calling it again has no effect.
func (s *RunState) RequestShutdown() {
	s.once.Do(func() {
		s.shutdown.Store(true)
		close(s.done)
	})
}

// ShutdownRequested reports whether RequestShutdown has been called.
func (s *RunState) ShutdownRequested() bool {
	return s.shutdown.Load()
}

// Done is closed when shutdown is requested.
func (s *RunState) Done() <-chan struct{} {
	return s.done
}
