package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment overrides are not applied; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// MINERVA_* environment variable overrides on top. Environment variables
// always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies MINERVA_SECTION_FIELD environment overrides.
// Malformed values are ignored rather than failing the load; validation of
// the final configuration still applies.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setInt := func(key string, dst *int) {
		if val := os.Getenv(key); val != "" {
			if i, err := strconv.Atoi(val); err == nil {
				*dst = i
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	setString("MINERVA_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("MINERVA_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("MINERVA_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("MINERVA_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	setDuration("MINERVA_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	setDuration("MINERVA_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	setInt("MINERVA_SERVER_MAX_HEADER_BYTES", &cfg.Server.MaxHeaderBytes)

	setString("MINERVA_RULES_OVERRIDES_PATH", &cfg.Rules.OverridesPath)
	setBool("MINERVA_RULES_WATCH", &cfg.Rules.Watch)

	setString("MINERVA_RISK_HISTORY_BACKEND", &cfg.Risk.HistoryBackend)
	setString("MINERVA_RISK_HISTORY_DB_PATH", &cfg.Risk.HistoryDBPath)
	setDuration("MINERVA_RISK_HISTORY_TIMEOUT", &cfg.Risk.HistoryTimeout)
	setDuration("MINERVA_RISK_HISTORY_WINDOW", &cfg.Risk.HistoryWindow)

	setBool("MINERVA_AUDIT_ENABLED", &cfg.Audit.Enabled)
	setString("MINERVA_AUDIT_BACKEND", &cfg.Audit.Backend)
	setString("MINERVA_AUDIT_DB_PATH", &cfg.Audit.DBPath)
	setInt("MINERVA_AUDIT_ASYNC_BUFFER", &cfg.Audit.AsyncBuffer)
	setDuration("MINERVA_AUDIT_WRITE_TIMEOUT", &cfg.Audit.WriteTimeout)

	setString("MINERVA_SCHEDULE_SWEEP_SCHEDULE", &cfg.Schedule.SweepSchedule)
	setString("MINERVA_SCHEDULE_RETENTION_SCHEDULE", &cfg.Schedule.RetentionSchedule)
	setInt("MINERVA_SCHEDULE_RETENTION_DAYS", &cfg.Schedule.RetentionDays)

	setString("MINERVA_TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	setString("MINERVA_TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	setBool("MINERVA_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setString("MINERVA_TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}
