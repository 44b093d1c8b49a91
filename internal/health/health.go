// internal/health/health.go
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the overall health
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Details are key/value facts a check reports alongside its result
type Details map[string]string

// CheckFunc checks one component. Details are reported whether or not the
// check fails.
type CheckFunc func(ctx context.Context) (Details, error)

// Report contains the overall health status
type Report struct {
	Status    Status             `json:"status"`
	Checks    map[string]string  `json:"checks"`
	Details   map[string]Details `json:"details,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Healthy reports whether every check passed
func (r *Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker manages health checks
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures the health checker
type Option func(*Checker)

// WithCheckTimeout sets the timeout for each check
func WithCheckTimeout(d time.Duration) Option {
	return func(h *Checker) {
		h.timeout = d
	}
}

// NewChecker creates a new health checker
func NewChecker(logger *zap.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: 5 * time.Second,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register adds a health check
func (h *Checker) Register(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

type checkResult struct {
	details Details
	err     error
}

// Check runs all health checks
func (h *Checker) Check(ctx context.Context) *Report {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	report := &Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]string),
		Details:   make(map[string]Details),
		Timestamp: time.Now(),
	}

	// Run checks in parallel
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			done := make(chan checkResult, 1)
			go func() {
				details, err := check(checkCtx)
				done <- checkResult{details: details, err: err}
			}()

			var res checkResult
			select {
			case res = <-done:
			case <-checkCtx.Done():
				res.err = fmt.Errorf("timeout after %v", h.timeout)
			}

			mu.Lock()
			defer mu.Unlock()

			if len(res.details) > 0 {
				report.Details[name] = res.details
			}
			if res.err != nil {
				h.logger.Warn("health check failed", zap.String("check", name), zap.Error(res.err))
				report.Checks[name] = fmt.Sprintf("unhealthy: %v", res.err)
				report.Status = StatusUnhealthy
			} else {
				report.Checks[name] = "healthy"
			}
		}(name, check)
	}

	wg.Wait()
	return report
}
