// Package source loads rule enablement overrides from a YAML file and keeps
// them applied as the file changes on disk.
//
// The override file toggles rules in a live registry without a restart:
//
//	rules:
//	  - id: security-client-facing-restrictions
//	    enabled: false
//
// A Watcher observes the file with fsnotify, debounces rapid change bursts,
// and re-applies the overrides on each settled change. A reload that fails to
// parse leaves the registry untouched.
package source
