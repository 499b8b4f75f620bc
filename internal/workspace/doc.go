// Package workspace creates, guards, and removes the temporary directories a
// session materializes commit contents into, and sweeps leftover workspaces
// during clean.
package workspace
