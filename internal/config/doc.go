// Package config loads the izconfig project configuration and merges it with
// CLI overrides, environment variables, and built-in defaults into the single
// effective configuration consumed by a session.
package config
