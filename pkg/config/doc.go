// Package config provides configuration management for promptctl.
//
// It wraps component, policy, and scan configuration to provide a single
// API for loading, validating, and writing configuration files in YAML
// format.
package config
