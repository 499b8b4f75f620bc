package execshell

// CommandEventObserver is notified as a shell command moves through its lifecycle.
type CommandEventObserver interface {
	// CommandStarted fires right before the command begins executing.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once execution finished, carrying the captured result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when execution breaks down before any result exists.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver ignores every command event.
type noopCommandEventObserver struct{}

// CommandStarted discards the start notification.
func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

// CommandCompleted discards the completion notification.
func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

// CommandExecutionFailed discards the failure notification.
func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
