package config

import (
	"os"
	"strconv"

	"github.com/FairForge/nfstraffic/internal/cfenv"
)

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv(cfg *Config) {
	setInt(&cfg.Server.Port, "PORT")

	if logLevel := os.Getenv("NFSTRAFFIC_LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if logFormat := os.Getenv("NFSTRAFFIC_LOG_FORMAT"); logFormat != "" {
		cfg.Server.LogFormat = logFormat
	}

	// Traffic settings
	cfg.Traffic.Directory = GetEnvOrDefault("NFSTRAFFIC_DIRECTORY", cfg.Traffic.Directory)
	cfg.Traffic.ServiceName = GetEnvOrDefault("NFSTRAFFIC_SERVICE_NAME", cfg.Traffic.ServiceName)
	setInt(&cfg.Traffic.StartupDelayMs, "NFSTRAFFIC_STARTUP_DELAY_MS")
	setInt(&cfg.Traffic.LogIntervalSeconds, "NFSTRAFFIC_LOG_INTERVAL_SECONDS")
	setInt(&cfg.Traffic.Read.Threads, "NFSTRAFFIC_READ_THREADS")
	setInt(&cfg.Traffic.Write.Threads, "NFSTRAFFIC_WRITE_THREADS")
	setInt(&cfg.Traffic.Read.DurationSeconds, "NFSTRAFFIC_READ_DURATION_SECONDS")
	setInt(&cfg.Traffic.Write.DurationSeconds, "NFSTRAFFIC_WRITE_DURATION_SECONDS")

	if os.Getenv(cfenv.EnvInstanceIndex) != "" {
		cfg.Traffic.InstanceIndex = cfenv.InstanceIndex()
	}
}

// setInt overwrites *dst when key holds a valid integer.
func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
