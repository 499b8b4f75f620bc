// Package prompt collects user confirmations prior to destructive operations.
package prompt
