package session

import "fmt"

const (
	spawnErrorMessageTemplateConstant         = "unable to start command %q: %v"
	interruptedErrorMessageTemplateConstant   = "interrupted by %s"
	commandFailedErrorMessageTemplateConstant = "command exited with code %d"
	emptyCommandMessageTemplateConstant       = "command %q resolves to an empty command line"
)

// SpawnError reports a resolved command that could not be started.
type SpawnError struct {
	Command string
	Cause   error
}

// Error names the command that failed to start.
func (spawnError SpawnError) Error() string {
	return fmt.Sprintf(spawnErrorMessageTemplateConstant, spawnError.Command, spawnError.Cause)
}

// Unwrap exposes the underlying cause.
func (spawnError SpawnError) Unwrap() error {
	return spawnError.Cause
}

// InterruptedError reports a session cut short by a termination signal.
type InterruptedError struct {
	SignalName string
}

// Error names the interrupting signal.
func (interruptedError InterruptedError) Error() string {
	return fmt.Sprintf(interruptedErrorMessageTemplateConstant, interruptedError.SignalName)
}

// CommandFailedError reports a command that ran to completion with a non-zero status.
type CommandFailedError struct {
	ExitCode int
}

// Error renders the exit code.
func (commandError CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorMessageTemplateConstant, commandError.ExitCode)
}

// EmptyCommandError reports a command template that resolved to no words.
type EmptyCommandError struct {
	CommandName string
}

// Error names the offending command.
func (emptyCommandError EmptyCommandError) Error() string {
	return fmt.Sprintf(emptyCommandMessageTemplateConstant, emptyCommandError.CommandName)
}
