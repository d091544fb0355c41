// Package config defines the engine configuration, loads it from YAML, and
// validates it.
//
// # Loading Sequence
//
// Configuration is assembled in four steps: parse the YAML file, apply
// defaults to every unset field, apply MINERVA_* environment overrides, and
// validate the final result. LoadConfigWithEnvOverrides performs all four;
// LoadConfig skips the environment step.
//
// Environment variables follow the naming convention MINERVA_SECTION_FIELD,
// e.g. MINERVA_SERVER_LISTEN_ADDRESS or MINERVA_TELEMETRY_LOGGING_LEVEL, and
// always take precedence over file values.
package config
