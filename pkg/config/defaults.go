package config

import "time"

// Default values applied to unset fields.
const (
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultHistoryBackend = "sqlite"
	DefaultHistoryDBPath  = "data/history.db"
	DefaultHistoryTimeout = 2 * time.Second
	DefaultHistoryWindow  = 30 * 24 * time.Hour

	DefaultAuditBackend      = "sqlite"
	DefaultAuditDBPath       = "data/audit.db"
	DefaultAuditAsyncBuffer  = 1000
	DefaultAuditWriteTimeout = 5 * time.Second

	DefaultRetentionDays = 90

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
)

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{
		Audit: AuditConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default value. Boolean
// fields keep their zero value; enable them explicitly in the file or via
// DefaultConfig.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Risk.HistoryBackend == "" {
		cfg.Risk.HistoryBackend = DefaultHistoryBackend
	}
	if cfg.Risk.HistoryDBPath == "" {
		cfg.Risk.HistoryDBPath = DefaultHistoryDBPath
	}
	if cfg.Risk.HistoryTimeout == 0 {
		cfg.Risk.HistoryTimeout = DefaultHistoryTimeout
	}
	if cfg.Risk.HistoryWindow == 0 {
		cfg.Risk.HistoryWindow = DefaultHistoryWindow
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.DBPath == "" {
		cfg.Audit.DBPath = DefaultAuditDBPath
	}
	if cfg.Audit.AsyncBuffer == 0 {
		cfg.Audit.AsyncBuffer = DefaultAuditAsyncBuffer
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = DefaultAuditWriteTimeout
	}

	if cfg.Schedule.RetentionDays == 0 {
		cfg.Schedule.RetentionDays = DefaultRetentionDays
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
