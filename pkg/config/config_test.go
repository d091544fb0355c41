package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minerva.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if !cfg.Audit.Enabled {
		t.Error("audit not enabled by default")
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("metrics not enabled by default")
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
audit:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.ListenAddress != ":9090" {
		t.Errorf("listen address = %q, want :9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if cfg.Risk.HistoryBackend != "sqlite" {
		t.Errorf("history backend = %q, want sqlite default", cfg.Risk.HistoryBackend)
	}
	if cfg.Telemetry.Logging.Level != "info" {
		t.Errorf("log level = %q, want info default", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigRejectsMissingAndMalformedFiles(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}

	path := writeConfig(t, "server: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestEnvOverridesTakePrecedence(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
telemetry:
  logging:
    level: info
`)

	t.Setenv("MINERVA_SERVER_LISTEN_ADDRESS", ":7070")
	t.Setenv("MINERVA_SERVER_REQUEST_TIMEOUT", "45s")
	t.Setenv("MINERVA_TELEMETRY_LOGGING_LEVEL", "debug")
	t.Setenv("MINERVA_AUDIT_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.ListenAddress != ":7070" {
		t.Errorf("listen address = %q, want env value :7070", cfg.Server.ListenAddress)
	}
	if cfg.Server.RequestTimeout != 45*time.Second {
		t.Errorf("request timeout = %v, want 45s", cfg.Server.RequestTimeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Audit.Enabled {
		t.Error("audit not enabled via env")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ListenAddress = ""
	cfg.Telemetry.Logging.Level = "loud"
	cfg.Risk.HistoryBackend = "postgres"
	cfg.Schedule.SweepSchedule = "nope"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("invalid config accepted")
	}

	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(errs) != 4 {
		t.Errorf("errors = %d, want 4: %v", len(errs), err)
	}

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{
		"server.listen_address",
		"telemetry.logging.level",
		"risk.history_backend",
		"schedule.sweep_schedule",
	} {
		if !fields[want] {
			t.Errorf("missing validation error for %s", want)
		}
	}

	if !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("aggregate message missing field name: %q", err.Error())
	}
}

func TestValidateCronExpressions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule.SweepSchedule = "0 * * * *"
	cfg.Schedule.RetentionSchedule = "0 3 * * *"
	if err := Validate(cfg); err != nil {
		t.Fatalf("valid cron rejected: %v", err)
	}

	cfg.Schedule.RetentionSchedule = "every day"
	if err := Validate(cfg); err == nil {
		t.Error("invalid cron accepted")
	}
}
