package traffic

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkerReport is what a worker leaves behind when it exits.
type WorkerReport struct {
	Identity WorkerIdentity
	Mode     Mode
	Loop     LoopResult
	Err      error // set when the worker could not start its loop
}

// Pool is a running set of workers. Workers never return errors to the pool;
// everything they hit is logged.
type Pool struct {
	run   *RunState
	group errgroup.Group
	size  int
	done  chan struct{}

	mu      sync.Mutex
	reports []WorkerReport
}

// Spawn starts cfg.Read.Threads read workers and cfg.Write.Threads write
// workers. Each worker owns the file named by its WorkerIdentity.
func Spawn(cfg WorkloadConfig, run *RunState, logger *zap.Logger, recorder Recorder) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = NopRecorder()
	}

	p := &Pool{
		run:  run,
		done: make(chan struct{}),
	}

	for _, mode := range Modes {
		mc := cfg.Mode(mode)
		for i := range max(mc.Threads, 0) {
			w := &worker{
				mode: mode,
				id: WorkerIdentity{
					Directory:     cfg.Directory,
					BaseName:      mc.FileName,
					ProcessID:     cfg.ProcessID,
					InstanceIndex: cfg.InstanceIndex,
					ThreadIndex:   i,
				},
				cfg:         mc,
				logInterval: cfg.LogInterval,
				state:       run,
				recorder:    recorder,
			}
			w.logger = logger.With(zap.String("mode", string(mode)), zap.String("worker", w.id.Name()))
			w.io = NewFileIO(w.logger, WithSync(mc.Sync), WithBandwidthLimit(mc.MaxBytesPerSecond))

			p.size++
			p.group.Go(func() error {
				p.record(w.run())
				return nil
			})
		}
	}

	go func() {
		_ = p.group.Wait()
		close(p.done)
	}()

	return p
}

func (p *Pool) record(r WorkerReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
}

// Size is the number of workers spawned.
func (p *Pool) Size() int {
	return p.size
}

// Done is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until every worker has exited and returns their reports,
// read workers first, each mode ordered by thread.
func (p *Pool) Wait() []WorkerReport {
	<-p.done

	p.mu.Lock()
	defer p.mu.Unlock()

	reports := slices.Clone(p.reports)
	slices.SortFunc(reports, func(a, b WorkerReport) int {
		if c := cmp.Compare(slices.Index(Modes, a.Mode), slices.Index(Modes, b.Mode)); c != 0 {
			return c
		}
		return cmp.Compare(a.Identity.ThreadIndex, b.Identity.ThreadIndex)
	})
	return reports
}

// Stop requests shutdown and waits for the workers to observe it.
func (p *Pool) Stop() []WorkerReport {
	p.run.RequestShutdown()
	return p.Wait()
}

type worker struct {
	mode        Mode
	id          WorkerIdentity
	cfg         ModeConfig
	logInterval time.Duration
	state       *RunState
	logger      *zap.Logger
	recorder    Recorder
	io          *FileIO
}

func (w *worker) run() WorkerReport {
	w.recorder.WorkerStarted(w.mode)
	defer w.recorder.WorkerStopped(w.mode)

	if w.id.ThreadIndex == 0 {
		w.logger.Warn(fmt.Sprintf("WARNING: app will %s base file %s in directory %s for %d seconds",
			w.action(), w.id.Base(), w.id.Directory, int64(w.cfg.Duration.Seconds())))
	}

	if w.mode == ModeRead {
		return w.runRead()
	}
	return w.runWrite()
}

func (w *worker) action() string {
	if w.mode == ModeRead {
		return "read data from"
	}
	return "write to"
}

func (w *worker) loop(op Operation) *TimedLoop {
	return NewTimedLoop(LoopConfig{
		Mode:        w.mode,
		Path:        w.id.Path(),
		Duration:    w.cfg.Duration,
		LogInterval: w.logInterval,
	}, op, w.state, WithLoopLogger(w.logger), WithRecorder(w.recorder))
}

// runRead creates the file once, sweeps it until the loop ends, then removes it.
func (w *worker) runRead() WorkerReport {
	report := WorkerReport{Identity: w.id, Mode: w.mode}
	path := w.id.Path()

	if _, err := w.io.WriteFile(path, w.cfg.FileSize, materializeChunkSize); err != nil {
		w.logger.Error("failed to create read test file", zap.String("path", path), zap.Error(err))
		w.remove(path)
		report.Err = err
		return report
	}

	report.Loop = w.loop(func() (int64, error) {
		return w.io.ReadFile(path, w.cfg.FileSize, w.cfg.ChunkSize)
	}).Run()

	w.remove(path)
	return report
}

// runWrite rewrites the file on every pass; the loop removes it on exit.
func (w *worker) runWrite() WorkerReport {
	path := w.id.Path()
	return WorkerReport{
		Identity: w.id,
		Mode:     w.mode,
		Loop: w.loop(func() (int64, error) {
			return w.io.WriteFile(path, w.cfg.FileSize, w.cfg.ChunkSize)
		}).Run(),
	}
}

func (w *worker) remove(path string) {
	if err := removeFile(path); err != nil {
		w.logger.Warn("failed to remove test file", zap.String("path", path), zap.Error(err))
	}
}
