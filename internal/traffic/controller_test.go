package traffic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestController(cfg WorkloadConfig, opts ...ControllerOption) *Controller {
	c := NewController(cfg, zap.NewNop(), opts...)
	c.minDelay = 0
	return c
}

func (c *Controller) hasRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur != nil
}

func startAsync(ctx context.Context, c *Controller) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()
	return errCh
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController(testWorkload(t.TempDir()), nil)

	assert.Equal(t, time.Second, c.minDelay)
	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.recorder)
}

func TestController_StartRunsWorkers(t *testing.T) {
	cfg := testWorkload(t.TempDir())
	cfg.Write.Threads = 2
	c := newTestController(cfg)

	require.NoError(t, c.Start(context.Background()))
	reports := c.Wait()

	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, LoopCompleted, r.Loop.State)
	}
	select {
	case <-c.Done():
	default:
		t.Fatal("done not closed after run finished")
	}
}

func TestController_StartWhileRunning(t *testing.T) {
	cfg := testWorkload(t.TempDir())
	cfg.Write.Threads = 1
	cfg.Write.Duration = time.Hour
	c := newTestController(cfg)

	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(c.Stop)

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
}

func TestController_StopDuringStartupDelay(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	cfg := testWorkload(dir)
	cfg.Read.Threads = 2
	cfg.Write.Threads = 2
	cfg.StartupDelay = time.Hour
	rec := &countingRecorder{}
	c := newTestController(cfg, WithControllerRecorder(rec))

	errCh := startAsync(context.Background(), c)
	require.Eventually(t, c.hasRun, time.Second, 5*time.Millisecond)

	// Act
	c.Stop()

	// Assert
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("start did not return after stop")
	}
	assert.Zero(t, rec.started.Load())
	assert.Empty(t, listFiles(t, dir))
	assert.Nil(t, c.Wait())
}

func TestController_ContextCancelDuringStartupDelay(t *testing.T) {
	cfg := testWorkload(t.TempDir())
	cfg.Write.Threads = 1
	cfg.StartupDelay = time.Hour
	rec := &countingRecorder{}
	c := newTestController(cfg, WithControllerRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := startAsync(ctx, c)
	require.Eventually(t, c.hasRun, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("start did not return after cancel")
	}
	assert.Zero(t, rec.started.Load())
}

func TestController_ContextCancelStopsWorkers(t *testing.T) {
	cfg := testWorkload(t.TempDir())
	cfg.Write.Threads = 1
	cfg.Write.Duration = time.Hour
	c := newTestController(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
	reports := c.Wait()
	require.Len(t, reports, 1)
	assert.Equal(t, LoopCancelled, reports[0].Loop.State)
}

func TestController_StopMidRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testWorkload(dir)
	cfg.Read.Threads = 1
	cfg.Read.Duration = time.Hour
	cfg.Write.Threads = 2
	cfg.Write.Duration = time.Hour
	rec := &countingRecorder{}
	c := newTestController(cfg, WithControllerRecorder(rec))

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return rec.passes.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)

	c.Stop()

	reports := c.Wait()
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.Equal(t, LoopCancelled, r.Loop.State)
	}
	assert.Empty(t, listFiles(t, dir))
	assert.Zero(t, rec.active.Load())
}

func TestController_StopIsIdempotent(t *testing.T) {
	c := newTestController(testWorkload(t.TempDir()))

	// No run yet.
	c.Stop()
	assert.Nil(t, c.Wait())
	<-c.Done()

	require.NoError(t, c.Start(context.Background()))
	c.Stop()
	c.Stop()
}

func TestController_Restart(t *testing.T) {
	cfg := testWorkload(t.TempDir())
	cfg.Write.Threads = 1
	cfg.Write.Duration = time.Hour
	rec := &countingRecorder{}
	c := newTestController(cfg, WithControllerRecorder(rec))

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	require.NoError(t, c.Start(context.Background()))
	require.Eventually(t, func() bool { return rec.started.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	c.Stop()

	reports := c.Wait()
	require.Len(t, reports, 1)
	assert.Equal(t, LoopCancelled, reports[0].Loop.State)
}

func TestController_StopBeforeStart(t *testing.T) {
	c := newTestController(testWorkload(t.TempDir()))

	assert.NotPanics(t, c.Stop)
	assert.Empty(t, c.Wait())
}

func TestController_StartWithCancelledContext(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	cfg := testWorkload(dir)
	cfg.Read.Threads = 2
	cfg.Write.Threads = 2
	rec := &countingRecorder{}
	c := newTestController(cfg, WithControllerRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := c.Start(ctx)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, c.Wait())
	assert.Equal(t, int64(0), rec.started.Load())
	assert.Empty(t, listFiles(t, dir))
}
