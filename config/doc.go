// Package config loads stacktail settings: defaults, then an optional YAML
// file, then environment overrides.
package config
