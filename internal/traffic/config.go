package traffic

import (
	"fmt"
	"time"
)

// Mode selects the direction of a worker's I/O.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// Modes lists the modes in spawn order.
var Modes = []Mode{ModeRead, ModeWrite}

// participle is the word used in rate log lines.
func (m Mode) participle() string {
	if m == ModeWrite {
		return "written"
	}
	return "read"
}

// ModeConfig holds the settings of one worker mode.
type ModeConfig struct {
	Threads   int
	FileName  string // base of every worker file name
	ChunkSize int
	FileSize  int64
	Duration  time.Duration // 0 means a single pass

	// Sync forces a data sync after every written chunk.
	Sync bool
	// MaxBytesPerSecond caps each worker of this mode. 0 is unlimited.
	MaxBytesPerSecond int
}

// WorkloadConfig is the resolved, immutable configuration of a run.
type WorkloadConfig struct {
	Directory     string
	ProcessID     string
	InstanceIndex int
	LogInterval   time.Duration
	StartupDelay  time.Duration

	Read  ModeConfig
	Write ModeConfig
}

// Mode returns the settings for m.
func (c WorkloadConfig) Mode(m Mode) ModeConfig {
	if m == ModeWrite {
		return c.Write
	}
	return c.Read
}

// TotalThreads is the number of workers a run of c spawns.
func (c WorkloadConfig) TotalThreads() int {
	return max(c.Read.Threads, 0) + max(c.Write.Threads, 0)
}

// Validate performs the range checks the traffic core relies on.
func (c WorkloadConfig) Validate() error {
	if c.Directory == "" {
		return fmt.Errorf("traffic: directory is required")
	}
	if c.LogInterval < 0 {
		return fmt.Errorf("traffic: log interval must be non-negative")
	}
	for _, m := range Modes {
		mc := c.Mode(m)
		if mc.Threads < 0 {
			return fmt.Errorf("traffic: %s threads must be non-negative", m)
		}
		if mc.Threads == 0 {
			continue
		}
		if mc.ChunkSize <= 0 {
			return fmt.Errorf("traffic: %s chunk size must be positive", m)
		}
		if mc.FileSize < 0 {
			return fmt.Errorf("traffic: %s file size must be non-negative", m)
		}
		if mc.Duration < 0 {
			return fmt.Errorf("traffic: %s duration must be non-negative", m)
		}
		if mc.MaxBytesPerSecond < 0 {
			return fmt.Errorf("traffic: %s max bytes per second must be non-negative", m)
		}
	}
	return nil
}
