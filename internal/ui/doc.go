// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate shell command events into concise messages so that
// execution feedback remains actionable for CLI users while detailed telemetry
// continues to flow through structured loggers.
package ui
