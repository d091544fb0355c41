package config

import "time"

// Config is the root engine configuration.
type Config struct {
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Rules configures the rule registry.
	Rules RulesConfig `yaml:"rules"`

	// Risk configures the risk scorer and its decision history.
	Risk RiskConfig `yaml:"risk"`

	// Audit configures decision audit recording.
	Audit AuditConfig `yaml:"audit"`

	// Schedule configures background sweeps and retention.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the API listens on.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds handling of a single request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// RulesConfig contains rule registry settings.
type RulesConfig struct {
	// OverridesPath is an optional YAML file toggling rules by id.
	OverridesPath string `yaml:"overrides_path"`

	// Watch reloads the overrides file on change.
	Watch bool `yaml:"watch"`
}

// RiskConfig contains risk scorer settings.
type RiskConfig struct {
	// HistoryBackend selects the decision history store: "sqlite" or
	// "memory".
	HistoryBackend string `yaml:"history_backend"`

	// HistoryDBPath is the SQLite file for the decision history.
	HistoryDBPath string `yaml:"history_db_path"`

	// HistoryTimeout bounds the compliance-history lookup per score.
	HistoryTimeout time.Duration `yaml:"history_timeout"`

	// HistoryWindow is how far back the compliance lookup reaches.
	HistoryWindow time.Duration `yaml:"history_window"`
}

// AuditConfig contains audit recorder settings.
type AuditConfig struct {
	// Enabled enables audit recording.
	Enabled bool `yaml:"enabled"`

	// Backend selects the audit store: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// DBPath is the SQLite file for audit records.
	DBPath string `yaml:"db_path"`

	// AsyncBuffer is the size of the async write channel.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds each storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ScheduleConfig contains background job settings.
type ScheduleConfig struct {
	// SweepSchedule is the cron expression for risk sweeps. Empty
	// disables sweeping.
	SweepSchedule string `yaml:"sweep_schedule"`

	// RetentionSchedule is the cron expression for history pruning.
	// Empty disables pruning.
	RetentionSchedule string `yaml:"retention_schedule"`

	// RetentionDays is how long decision history is kept.
	RetentionDays int `yaml:"retention_days"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}
