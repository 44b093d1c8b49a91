package traffic

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ThroughputSample is the traffic observed over one log interval.
type ThroughputSample struct {
	Bytes    int64
	Interval time.Duration
}

// BytesPerSecond returns the sample's rate, truncated to a whole number.
func (s ThroughputSample) BytesPerSecond() int64 {
	secs := s.Interval.Seconds()
	if secs <= 0 {
		return 0
	}
	return int64(float64(s.Bytes) / secs)
}

// ThroughputAccumulator counts bytes since the last report and produces a
// sample once more than the log interval has elapsed. It is owned by a
// single loop and is not safe for concurrent use.
type ThroughputAccumulator struct {
	interval time.Duration
	lastLog  time.Time
	bytes    int64
}

// NewThroughputAccumulator starts accounting at start.
func NewThroughputAccumulator(interval time.Duration, start time.Time) *ThroughputAccumulator {
	return &ThroughputAccumulator{
		interval: interval,
		lastLog:  start,
	}
}

// Add records n bytes moved by a pass that ended at now. When the interval
// has been exceeded it returns the sample and resets the counter.
func (a *ThroughputAccumulator) Add(n int64, now time.Time) (ThroughputSample, bool) {
	a.bytes += n

	elapsed := now.Sub(a.lastLog)
	if elapsed <= a.interval {
		return ThroughputSample{}, false
	}

	sample := ThroughputSample{Bytes: a.bytes, Interval: elapsed}
	a.bytes = 0
	a.lastLog = now
	return sample, true
}

// formatCount renders n with thousands separators, e.g. 12,345,678.
func formatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
