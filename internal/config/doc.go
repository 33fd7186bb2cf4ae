// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Besides server settings it resolves the
// container catalog, either inline or imported from a CSV, XLSX or YAML file,
// and the packing defaults (strategy, grid step, timeout, item limit).
package config
