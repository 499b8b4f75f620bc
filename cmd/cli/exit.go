package cli

import (
	"errors"

	"github.com/temirov/iz/internal/session"
)

// CoreFailureExitCode is reserved for failures of iz itself, including
// interrupted sessions, so it never collides with well-known exit codes of the
// commands iz runs.
const CoreFailureExitCode = 125

// ExitCodeFor maps an execution error to the process exit code.
//
// A command that ran to completion propagates its own exit code; every other
// failure maps to CoreFailureExitCode.
func ExitCodeFor(executionError error) int {
	if executionError == nil {
		return 0
	}

	var commandFailedError session.CommandFailedError
	if errors.As(executionError, &commandFailedError) {
		return commandFailedError.ExitCode
	}

	return CoreFailureExitCode
}
