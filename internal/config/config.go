package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FairForge/nfstraffic/internal/cfenv"
	"github.com/FairForge/nfstraffic/internal/logging"
	"github.com/FairForge/nfstraffic/internal/traffic"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schema string

// ErrNoDirectory is returned by Resolve when no target directory is
// configured and no volume service provides one.
var ErrNoDirectory = errors.New("config: no target directory")

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Traffic TrafficConfig `yaml:"traffic"`
}

type ServerConfig struct {
	Port                   int    `yaml:"port" default:"8080"`
	LogLevel               string `yaml:"log_level" default:"info"`
	LogFormat              string `yaml:"log_format" default:"json"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds" default:"30"`
}

type TrafficConfig struct {
	// Directory defaults to the volume mount of the service named ServiceName.
	Directory   string `yaml:"directory"`
	ServiceName string `yaml:"service_name" default:"test-nfs"`
	// ProcessID defaults to the application name, then the hostname.
	ProcessID          string     `yaml:"process_id"`
	InstanceIndex      int        `yaml:"instance_index"`
	LogIntervalSeconds int        `yaml:"log_interval_seconds" default:"10"`
	StartupDelayMs     int        `yaml:"startup_delay_ms" default:"5000"`
	Read               ModeConfig `yaml:"read"`
	Write              ModeConfig `yaml:"write"`
}

type ModeConfig struct {
	Threads           int    `yaml:"threads" default:"1"`
	FileName          string `yaml:"filename"`
	ChunkSize         int    `yaml:"chunk_size" default:"8192"`
	FileSize          int64  `yaml:"file_size" default:"10485760"`
	DurationSeconds   int    `yaml:"duration_seconds" default:"3600"`
	Sync              bool   `yaml:"sync"`
	MaxBytesPerSecond int    `yaml:"max_bytes_per_second"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	mode := func(name string) ModeConfig {
		return ModeConfig{
			Threads:         1,
			FileName:        name,
			ChunkSize:       8 * 1024,
			FileSize:        10 * 1024 * 1024,
			DurationSeconds: 3600,
		}
	}
	return &Config{
		Server: ServerConfig{
			Port:                   8080,
			LogLevel:               logging.LevelInfo,
			LogFormat:              logging.FormatJSON,
			ShutdownTimeoutSeconds: 30,
		},
		Traffic: TrafficConfig{
			ServiceName:        "test-nfs",
			LogIntervalSeconds: 10,
			StartupDelayMs:     5000,
			Read:               mode("nfs-read-test"),
			Write:              mode("nfs-write-test"),
		},
	}
}

// LoadFile reads a YAML (or JSON) file over the defaults. The document is
// checked against the embedded schema before it is decoded.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if doc == nil {
		return cfg, nil
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func validateSchema(doc interface{}) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("config: schema validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			errs = append(errs, e.String())
		}
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks ranges that do not depend on the environment.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid port: %d", c.Server.Port)
	}
	logCfg := c.Logging()
	if err := logCfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Traffic.LogIntervalSeconds < 0 {
		return fmt.Errorf("config: log_interval_seconds must be non-negative")
	}
	if c.Traffic.InstanceIndex < 0 {
		return fmt.Errorf("config: instance_index must be non-negative")
	}
	if c.Traffic.StartupDelayMs < 0 {
		return fmt.Errorf("config: startup_delay_ms must be non-negative")
	}
	for name, m := range map[string]ModeConfig{"read": c.Traffic.Read, "write": c.Traffic.Write} {
		if err := m.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (m ModeConfig) validate(name string) error {
	switch {
	case m.Threads < 0:
		return fmt.Errorf("config: %s.threads must be non-negative", name)
	case m.Threads > 0 && m.ChunkSize <= 0:
		return fmt.Errorf("config: %s.chunk_size must be positive", name)
	case m.Threads > 0 && m.FileName == "":
		return fmt.Errorf("config: %s.filename is required", name)
	case m.FileSize < 0:
		return fmt.Errorf("config: %s.file_size must be non-negative", name)
	case m.DurationSeconds < 0:
		return fmt.Errorf("config: %s.duration_seconds must be non-negative", name)
	case m.MaxBytesPerSecond < 0:
		return fmt.Errorf("config: %s.max_bytes_per_second must be non-negative", name)
	}
	return nil
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.LoggerConfig {
	return logging.LoggerConfig{Level: c.Server.LogLevel, Format: c.Server.LogFormat}
}

// ShutdownTimeout bounds the graceful shutdown sequence.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// Resolve fills the directory and process ID from the Cloud Foundry
// environment when they are not configured. It fails with ErrNoDirectory
// when neither the config nor a bound service names a directory.
func (c *Config) Resolve() error {
	if c.Traffic.ProcessID == "" {
		if app, err := cfenv.CurrentApplication(); err == nil && app.Name != "" {
			c.Traffic.ProcessID = app.Name
		} else if host, err := os.Hostname(); err == nil {
			c.Traffic.ProcessID = host
		} else {
			c.Traffic.ProcessID = "nfstraffic"
		}
	}

	if c.Traffic.Directory != "" {
		return nil
	}
	svcs, err := cfenv.CurrentServices()
	if err == nil {
		var dir string
		if dir, err = svcs.VolumeMount(c.Traffic.ServiceName); err == nil {
			c.Traffic.Directory = dir
			return nil
		}
	}
	return fmt.Errorf("%w: NFS directory not defined -- is an NFS service named '%s' bound to app? (%v)",
		ErrNoDirectory, c.Traffic.ServiceName, err)
}

// Workload converts the config into the immutable settings of a run.
func (c *Config) Workload() traffic.WorkloadConfig {
	return traffic.WorkloadConfig{
		Directory:     c.Traffic.Directory,
		ProcessID:     c.Traffic.ProcessID,
		InstanceIndex: c.Traffic.InstanceIndex,
		LogInterval:   time.Duration(c.Traffic.LogIntervalSeconds) * time.Second,
		StartupDelay:  time.Duration(c.Traffic.StartupDelayMs) * time.Millisecond,
		Read:          c.Traffic.Read.workload(),
		Write:         c.Traffic.Write.workload(),
	}
}

func (m ModeConfig) workload() traffic.ModeConfig {
	return traffic.ModeConfig{
		Threads:           m.Threads,
		FileName:          m.FileName,
		ChunkSize:         m.ChunkSize,
		FileSize:          m.FileSize,
		Duration:          time.Duration(m.DurationSeconds) * time.Second,
		Sync:              m.Sync,
		MaxBytesPerSecond: m.MaxBytesPerSecond,
	}
}
