// Package cli assembles the iz command hierarchy: the root command with
// shared configuration and logging, the run command that executes project
// commands against historical commits, and the clean command that sweeps
// leftover workspaces.
package cli
