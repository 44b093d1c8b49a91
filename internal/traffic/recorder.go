package traffic

// Recorder receives traffic events for export. Implementations must be safe
// for concurrent use; every worker reports through the same Recorder.
type Recorder interface {
	AddBytes(mode Mode, n int64)
	ObserveRate(mode Mode, bytesPerSecond int64)
	PassCompleted(mode Mode, err error)
	WorkerStarted(mode Mode)
	WorkerStopped(mode Mode)
}

type nopRecorder struct{}

func (nopRecorder) AddBytes(Mode, int64) {}
func (nopRecorder) ObserveRate(Mode, int64) {}
func (nopRecorder) PassCompleted(Mode, error) {}
func (nopRecorder) WorkerStarted(Mode) {}
func (nopRecorder) WorkerStopped(Mode) {}

// NopRecorder discards all events.
func NopRecorder() Recorder {
	return nopRecorder{}
}
