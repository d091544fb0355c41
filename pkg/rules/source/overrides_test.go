package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"aegis-hq/minerva/pkg/rules"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	writeFile(t, path, `
rules:
  - id: security-client-facing-restriction
    enabled: false
  - id: compliance-gdpr-data-types
`)

	registry, err := rules.NewWithDefaults(nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := LoadAndApply(path, registry); err != nil {
		t.Fatalf("load and apply: %v", err)
	}

	rule := registry.GetRule("security-client-facing-restriction")
	if rule == nil {
		t.Fatal("get rule: security-client-facing-restriction not found")
	}
	if rule.Enabled {
		t.Error("override did not disable rule")
	}

	// Omitted enabled defaults to true.
	rule = registry.GetRule("compliance-gdpr-data-types")
	if rule == nil {
		t.Fatal("get rule: compliance-gdpr-data-types not found")
	}
	if !rule.Enabled {
		t.Error("omitted enabled flag should mean enabled")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("missing file accepted")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		writeFile(t, path, "rules: [unclosed")
		if _, err := Load(path); err == nil {
			t.Error("malformed yaml accepted")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		path := filepath.Join(dir, "noid.yaml")
		writeFile(t, path, "rules:\n  - enabled: false\n")
		if _, err := Load(path); err == nil {
			t.Error("override without id accepted")
		}
	})
}

func TestApplyUnknownRuleReported(t *testing.T) {
	registry, err := rules.NewWithDefaults(nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	enabled := false
	overrides := &Overrides{Rules: []RuleOverride{
		{ID: "no-such-rule", Enabled: &enabled},
		{ID: "compliance-gdpr-data-types", Enabled: &enabled},
	}}

	err = overrides.Apply(registry)
	if err == nil {
		t.Fatal("unknown rule id not reported")
	}

	// Known overrides are still applied.
	rule := registry.GetRule("compliance-gdpr-data-types")
	if rule == nil {
		t.Fatal("get rule: compliance-gdpr-data-types not found")
	}
	if rule.Enabled {
		t.Error("valid override skipped after unknown id")
	}
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	defer d.stop()

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.trigger(func() { fired <- struct{}{} })
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debounced callback never fired")
	}

	select {
	case <-fired:
		t.Error("burst fired more than once")
	case <-time.After(60 * time.Millisecond):
	}
}
