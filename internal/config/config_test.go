package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-nfs", cfg.Traffic.ServiceName)
	assert.Equal(t, 10, cfg.Traffic.LogIntervalSeconds)
	assert.Equal(t, 5000, cfg.Traffic.StartupDelayMs)
	assert.Equal(t, "nfs-read-test", cfg.Traffic.Read.FileName)
	assert.Equal(t, "nfs-write-test", cfg.Traffic.Write.FileName)
	assert.Equal(t, 8192, cfg.Traffic.Write.ChunkSize)
	assert.Equal(t, int64(10*1024*1024), cfg.Traffic.Read.FileSize)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	t.Run("overlays defaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`
server:
  port: 9000
traffic:
  directory: /mnt/nfs
  read:
    threads: 4
    chunk_size: 65536
  write:
    threads: 0
    sync: true
`))
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, "/mnt/nfs", cfg.Traffic.Directory)
		assert.Equal(t, 4, cfg.Traffic.Read.Threads)
		assert.Equal(t, 65536, cfg.Traffic.Read.ChunkSize)
		assert.Equal(t, "nfs-read-test", cfg.Traffic.Read.FileName)
		assert.Equal(t, 0, cfg.Traffic.Write.Threads)
		assert.True(t, cfg.Traffic.Write.Sync)
	})

	t.Run("accepts json", func(t *testing.T) {
		cfg, err := Parse([]byte(`{"traffic": {"write": {"duration_seconds": 0, "file_size": 1024}}}`))
		require.NoError(t, err)

		assert.Equal(t, 0, cfg.Traffic.Write.DurationSeconds)
		assert.Equal(t, int64(1024), cfg.Traffic.Write.FileSize)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("server: [port"))
		assert.Error(t, err)
	})
}

func TestParse_SchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"negative threads", "traffic:\n  read:\n    threads: -1\n"},
		{"zero chunk size", "traffic:\n  write:\n    chunk_size: 0\n"},
		{"string threads", "traffic:\n  read:\n    threads: many\n"},
		{"unknown key", "traffic:\n  reed:\n    threads: 1\n"},
		{"bad log level", "server:\n  log_level: loud\n"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"filename with slash", "traffic:\n  write:\n    filename: a/b\n"},
		{"not an object", "just a string"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nfstraffic.yaml")
		require.NoError(t, os.WriteFile(path, []byte("traffic:\n  startup_delay_ms: 250\n"), 0o600))

		cfg, err := LoadFile(path)

		require.NoError(t, err)
		assert.Equal(t, 250, cfg.Traffic.StartupDelayMs)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "invalid port"},
		{"log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "invalid level"},
		{"log interval", func(c *Config) { c.Traffic.LogIntervalSeconds = -1 }, "log_interval_seconds"},
		{"startup delay", func(c *Config) { c.Traffic.StartupDelayMs = -1 }, "startup_delay_ms"},
		{"instance index", func(c *Config) { c.Traffic.InstanceIndex = -1 }, "instance_index"},
		{"threads", func(c *Config) { c.Traffic.Read.Threads = -2 }, "read.threads"},
		{"chunk size", func(c *Config) { c.Traffic.Write.ChunkSize = 0 }, "write.chunk_size"},
		{"filename", func(c *Config) { c.Traffic.Write.FileName = "" }, "write.filename"},
		{"duration", func(c *Config) { c.Traffic.Read.DurationSeconds = -1 }, "read.duration_seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.wantErr)
		})
	}

	t.Run("idle mode skips chunk check", func(t *testing.T) {
		cfg := Default()
		cfg.Traffic.Write.Threads = 0
		cfg.Traffic.Write.ChunkSize = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_Workload(t *testing.T) {
	cfg := Default()
	cfg.Traffic.Directory = "/mnt/nfs"
	cfg.Traffic.ProcessID = "app"
	cfg.Traffic.InstanceIndex = 2
	cfg.Traffic.Write.MaxBytesPerSecond = 1 << 20

	wl := cfg.Workload()

	assert.Equal(t, "/mnt/nfs", wl.Directory)
	assert.Equal(t, "app", wl.ProcessID)
	assert.Equal(t, 2, wl.InstanceIndex)
	assert.Equal(t, 10*time.Second, wl.LogInterval)
	assert.Equal(t, 5*time.Second, wl.StartupDelay)
	assert.Equal(t, time.Hour, wl.Read.Duration)
	assert.Equal(t, 1<<20, wl.Write.MaxBytesPerSecond)
	assert.NoError(t, wl.Validate())
}

func TestConfig_ShutdownTimeout(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout())

	cfg.Server.ShutdownTimeoutSeconds = 5
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout())
}
