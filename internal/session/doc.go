// Package session orchestrates one run: resolving the command template,
// verifying the commit, materializing it into a fresh workspace, executing the
// command inside it, and discharging the cleanup obligation even when the run
// is interrupted.
package session
