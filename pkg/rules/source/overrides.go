package source

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aegis-hq/minerva/pkg/rules"
)

// RuleOverride toggles one rule by id.
type RuleOverride struct {
	// ID is the rule identifier to override.
	ID string `yaml:"id"`

	// Enabled sets the rule's enabled state. Omitted means enabled.
	Enabled *bool `yaml:"enabled"`
}

// Overrides is the parsed override file.
type Overrides struct {
	Rules []RuleOverride `yaml:"rules"`
}

// Load reads and parses an override file.
func Load(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides file: %w", err)
	}

	var overrides Overrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}

	for i, o := range overrides.Rules {
		if o.ID == "" {
			return nil, fmt.Errorf("overrides file %s: rules[%d] has no id", path, i)
		}
	}

	return &overrides, nil
}

// Apply applies the overrides to the registry. Overrides naming unknown rules
// are reported but do not prevent the rest from being applied.
func (o *Overrides) Apply(registry *rules.Registry) error {
	var errs []error
	for _, override := range o.Rules {
		enabled := true
		if override.Enabled != nil {
			enabled = *override.Enabled
		}
		if err := registry.SetRuleEnabled(override.ID, enabled); err != nil {
			errs = append(errs, fmt.Errorf("override %s: %w", override.ID, err))
		}
	}
	return errors.Join(errs...)
}

// LoadAndApply loads the override file and applies it to the registry.
func LoadAndApply(path string, registry *rules.Registry) error {
	overrides, err := Load(path)
	if err != nil {
		return err
	}
	return overrides.Apply(registry)
}
