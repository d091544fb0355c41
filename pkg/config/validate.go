package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all invalid fields found in one pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "text": true,
}

var validBackends = map[string]bool{
	"sqlite": true, "memory": true,
}

// Validate checks the configuration and reports every problem found, not
// just the first.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	if cfg.Server.ListenAddress == "" {
		add("server.listen_address", "cannot be empty")
	}
	if cfg.Server.ReadTimeout < 0 {
		add("server.read_timeout", "cannot be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		add("server.write_timeout", "cannot be negative")
	}
	if cfg.Server.IdleTimeout < 0 {
		add("server.idle_timeout", "cannot be negative")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "must be positive")
	}
	if cfg.Server.RequestTimeout <= 0 {
		add("server.request_timeout", "must be positive")
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		add("server.max_header_bytes", "must be positive")
	}

	if !validBackends[cfg.Risk.HistoryBackend] {
		add("risk.history_backend", fmt.Sprintf("unknown backend %q (want sqlite or memory)", cfg.Risk.HistoryBackend))
	}
	if cfg.Risk.HistoryBackend == "sqlite" && cfg.Risk.HistoryDBPath == "" {
		add("risk.history_db_path", "required for the sqlite backend")
	}
	if cfg.Risk.HistoryTimeout <= 0 {
		add("risk.history_timeout", "must be positive")
	}
	if cfg.Risk.HistoryWindow <= 0 {
		add("risk.history_window", "must be positive")
	}

	if !validBackends[cfg.Audit.Backend] {
		add("audit.backend", fmt.Sprintf("unknown backend %q (want sqlite or memory)", cfg.Audit.Backend))
	}
	if cfg.Audit.Backend == "sqlite" && cfg.Audit.DBPath == "" {
		add("audit.db_path", "required for the sqlite backend")
	}
	if cfg.Audit.AsyncBuffer <= 0 {
		add("audit.async_buffer", "must be positive")
	}
	if cfg.Audit.WriteTimeout <= 0 {
		add("audit.write_timeout", "must be positive")
	}

	if cfg.Schedule.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.SweepSchedule); err != nil {
			add("schedule.sweep_schedule", fmt.Sprintf("invalid cron expression: %v", err))
		}
	}
	if cfg.Schedule.RetentionSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.RetentionSchedule); err != nil {
			add("schedule.retention_schedule", fmt.Sprintf("invalid cron expression: %v", err))
		}
	}
	if cfg.Schedule.RetentionDays <= 0 {
		add("schedule.retention_days", "must be positive")
	}

	if !validLogLevels[cfg.Telemetry.Logging.Level] {
		add("telemetry.logging.level", fmt.Sprintf("unknown level %q (want debug, info, warn, or error)", cfg.Telemetry.Logging.Level))
	}
	if !validLogFormats[cfg.Telemetry.Logging.Format] {
		add("telemetry.logging.format", fmt.Sprintf("unknown format %q (want json or text)", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		add("telemetry.metrics.path", "must start with /")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
