package session

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/iz/internal/extract"
	"github.com/temirov/iz/internal/template"
	"github.com/temirov/iz/internal/workspace"
)

const (
	defaultTerminationGracePeriodConstant = 5 * time.Second
	signalChannelCapacityConstant         = 2
	defaultInterruptionSignalNameConstant = "interrupt"
	signalExitCodeBaseConstant            = 128

	loggerMissingMessageConstant         = "session runner requires a logger"
	extractorMissingMessageConstant      = "session runner requires a commit extractor"
	templateEngineMissingMessageConstant = "session runner requires a template engine"
	signalNotifierMissingMessageConstant = "session runner requires a signal notifier"

	resolvedCommitLogMessageConstant     = "resolved commit"
	createdWorkspaceLogMessageConstant   = "created workspace"
	extractedFilesLogMessageConstant     = "extracted commit files"
	runningCommandLogMessageConstant     = "running command"
	commandCompletedLogMessageConstant   = "command completed"
	keepingWorkspaceLogMessageConstant   = "keeping workspace"
	removedWorkspaceLogMessageConstant   = "removed workspace"
	workspaceCleanupFailedLogMessage     = "workspace cleanup failed"
	terminatingChildLogMessageConstant   = "terminating command after interruption"
	commitReferenceLogFieldNameConstant  = "commit"
	resolvedCommitLogFieldNameConstant   = "resolved_commit"
	workspacePathLogFieldNameConstant    = "workspace_path"
	commandNameLogFieldNameConstant      = "command_name"
	resolvedCommandLogFieldNameConstant  = "resolved_command"
	interruptionSignalLogFieldConstant   = "signal"
)

// ErrLoggerMissing indicates a runner was built without a logger.
var ErrLoggerMissing = errors.New(loggerMissingMessageConstant)

// ErrExtractorMissing indicates a runner was built without a commit extractor.
var ErrExtractorMissing = errors.New(extractorMissingMessageConstant)

// ErrTemplateEngineMissing indicates a runner was built without a template engine.
var ErrTemplateEngineMissing = errors.New(templateEngineMissingMessageConstant)

// ErrSignalNotifierMissing indicates a runner was built without a signal notifier.
var ErrSignalNotifierMissing = errors.New(signalNotifierMissingMessageConstant)

// Request describes one session against a historical commit.
type Request struct {
	CommitReference   string
	CommandName       string
	Parameters        map[string]string
	Commands          map[string]string
	TempDirectoryBase string
	Keep              bool
	WorkingDirectory  string
}

// Result reports where the workspace lived and whether it survived the session.
type Result struct {
	WorkspacePath     string
	WorkspaceRetained bool
}

// Workspace is the temporary directory a session runs in.
type Workspace interface {
	Path() string
	Retain()
	Destroy() error
}

// WorkspaceProvider creates the session workspace under the temporary directory base.
type WorkspaceProvider func(baseDirectory string) (Workspace, error)

// Dependencies carries the collaborators a Runner needs.
//
// TerminationGracePeriod bounds how long an interrupted session waits for the
// command to exit after SIGTERM before killing it; zero selects the default.
type Dependencies struct {
	Logger                 *zap.Logger
	Extractor              extract.CommitExtractor
	TemplateEngine         *template.Engine
	SignalNotifier         SignalNotifier
	WorkspaceProvider      WorkspaceProvider
	Output                 io.Writer
	Errors                 io.Writer
	Input                  io.Reader
	TerminationGracePeriod time.Duration
}

// Runner executes sessions.
type Runner struct {
	logger                 *zap.Logger
	extractor              extract.CommitExtractor
	templateEngine         *template.Engine
	signalNotifier         SignalNotifier
	workspaceProvider      WorkspaceProvider
	output                 io.Writer
	errorOutput            io.Writer
	input                  io.Reader
	terminationGracePeriod time.Duration
}

// NewRunner validates the dependencies and constructs a runner.
func NewRunner(dependencies Dependencies) (*Runner, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerMissing
	}
	if dependencies.Extractor == nil {
		return nil, ErrExtractorMissing
	}
	if dependencies.TemplateEngine == nil {
		return nil, ErrTemplateEngineMissing
	}
	if dependencies.SignalNotifier == nil {
		return nil, ErrSignalNotifierMissing
	}

	terminationGracePeriod := dependencies.TerminationGracePeriod
	if terminationGracePeriod <= 0 {
		terminationGracePeriod = defaultTerminationGracePeriodConstant
	}

	workspaceProvider := dependencies.WorkspaceProvider
	if workspaceProvider == nil {
		workspaceProvider = func(baseDirectory string) (Workspace, error) {
			return workspace.Create(baseDirectory)
		}
	}

	return &Runner{
		logger:                 dependencies.Logger,
		extractor:              dependencies.Extractor,
		templateEngine:         dependencies.TemplateEngine,
		signalNotifier:         dependencies.SignalNotifier,
		workspaceProvider:      workspaceProvider,
		output:                 dependencies.Output,
		errorOutput:            dependencies.Errors,
		input:                  dependencies.Input,
		terminationGracePeriod: terminationGracePeriod,
	}, nil
}

// Run executes one session.
//
// The command template and commit reference are validated before anything is
// created on disk. The workspace is removed when Run returns unless the
// request asks to keep it; the returned Result carries the workspace path
// either way so callers can report it.
func (runner *Runner) Run(executionContext context.Context, request Request) (result Result, runError error) {
	resolvedCommand, resolveError := runner.templateEngine.Resolve(request.CommandName, request.Commands, request.Parameters)
	if resolveError != nil {
		return result, resolveError
	}

	commandWords := strings.Fields(resolvedCommand)
	if len(commandWords) == 0 {
		return result, EmptyCommandError{CommandName: request.CommandName}
	}

	resolvedCommit, commitError := runner.extractor.ResolveCommit(executionContext, request.WorkingDirectory, request.CommitReference)
	if commitError != nil {
		return result, commitError
	}
	runner.logger.Info(resolvedCommitLogMessageConstant,
		zap.String(commitReferenceLogFieldNameConstant, request.CommitReference),
		zap.String(resolvedCommitLogFieldNameConstant, resolvedCommit))

	sessionContext, cancelSession := context.WithCancel(executionContext)
	defer cancelSession()

	signalChannel := make(chan os.Signal, signalChannelCapacityConstant)
	interruptionChannel := make(chan os.Signal, signalChannelCapacityConstant)
	signalWatcherDone := make(chan struct{})
	defer close(signalWatcherDone)
	runner.signalNotifier.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
	defer runner.signalNotifier.Stop(signalChannel)
	go func() {
		for {
			select {
			case receivedSignal := <-signalChannel:
				select {
				case interruptionChannel <- receivedSignal:
				default:
				}
				cancelSession()
			case <-signalWatcherDone:
				return
			}
		}
	}()

	workspaceInstance, createError := runner.workspaceProvider(request.TempDirectoryBase)
	if createError != nil {
		return result, createError
	}
	result.WorkspacePath = workspaceInstance.Path()
	runner.logger.Info(createdWorkspaceLogMessageConstant, zap.String(workspacePathLogFieldNameConstant, workspaceInstance.Path()))

	defer func() {
		if request.Keep {
			workspaceInstance.Retain()
			result.WorkspaceRetained = true
			runner.logger.Info(keepingWorkspaceLogMessageConstant, zap.String(workspacePathLogFieldNameConstant, workspaceInstance.Path()))
			return
		}
		if destroyError := workspaceInstance.Destroy(); destroyError != nil {
			runner.logger.Warn(workspaceCleanupFailedLogMessage,
				zap.String(workspacePathLogFieldNameConstant, workspaceInstance.Path()),
				zap.Error(destroyError))
			return
		}
		runner.logger.Info(removedWorkspaceLogMessageConstant, zap.String(workspacePathLogFieldNameConstant, workspaceInstance.Path()))
	}()

	if guardError := workspace.GuardAgainstWorkingDirectory(workspaceInstance.Path(), request.WorkingDirectory); guardError != nil {
		return result, guardError
	}

	if extractionError := runner.extractor.Extract(sessionContext, request.WorkingDirectory, resolvedCommit, workspaceInstance.Path()); extractionError != nil {
		if interruptionSignal, interrupted := takeSignal(interruptionChannel); interrupted {
			return result, InterruptedError{SignalName: interruptionSignal.String()}
		}
		return result, extractionError
	}
	runner.logger.Info(extractedFilesLogMessageConstant,
		zap.String(resolvedCommitLogFieldNameConstant, resolvedCommit),
		zap.String(workspacePathLogFieldNameConstant, workspaceInstance.Path()))

	if contextError := sessionContext.Err(); contextError != nil {
		if interruptionSignal, interrupted := takeSignal(interruptionChannel); interrupted {
			return result, InterruptedError{SignalName: interruptionSignal.String()}
		}
		return result, contextError
	}

	childCommand := exec.Command(commandWords[0], commandWords[1:]...)
	childCommand.Dir = workspaceInstance.Path()
	childCommand.Stdout = runner.output
	childCommand.Stderr = runner.errorOutput
	childCommand.Stdin = runner.input

	runner.logger.Info(runningCommandLogMessageConstant,
		zap.String(commandNameLogFieldNameConstant, request.CommandName),
		zap.String(resolvedCommandLogFieldNameConstant, resolvedCommand))

	if startError := childCommand.Start(); startError != nil {
		return result, SpawnError{Command: resolvedCommand, Cause: startError}
	}

	waitChannel := make(chan error, 1)
	go func() {
		waitChannel <- childCommand.Wait()
	}()

	select {
	case waitError := <-waitChannel:
		if waitError == nil {
			runner.logger.Info(commandCompletedLogMessageConstant, zap.String(commandNameLogFieldNameConstant, request.CommandName))
		}
		return result, interpretWaitError(waitError)
	case <-sessionContext.Done():
		signalName := defaultInterruptionSignalNameConstant
		if interruptionSignal, interrupted := takeSignal(interruptionChannel); interrupted {
			signalName = interruptionSignal.String()
		}
		runner.logger.Warn(terminatingChildLogMessageConstant,
			zap.String(commandNameLogFieldNameConstant, request.CommandName),
			zap.String(interruptionSignalLogFieldConstant, signalName))
		runner.terminateChild(childCommand, waitChannel, interruptionChannel)

		return result, InterruptedError{SignalName: signalName}
	}
}

// terminateChild asks the command to exit with SIGTERM and kills it when the
// grace period lapses or another interruption signal arrives in the meantime.
func (runner *Runner) terminateChild(childCommand *exec.Cmd, waitChannel <-chan error, interruptionChannel <-chan os.Signal) {
	_ = childCommand.Process.Signal(syscall.SIGTERM)

	graceTimer := time.NewTimer(runner.terminationGracePeriod)
	defer graceTimer.Stop()

	select {
	case <-waitChannel:
	case <-graceTimer.C:
		_ = childCommand.Process.Kill()
		<-waitChannel
	case <-interruptionChannel:
		_ = childCommand.Process.Kill()
		<-waitChannel
	}
}

func takeSignal(interruptionChannel <-chan os.Signal) (os.Signal, bool) {
	select {
	case receivedSignal := <-interruptionChannel:
		return receivedSignal, true
	default:
		return nil, false
	}
}

func interpretWaitError(waitError error) error {
	if waitError == nil {
		return nil
	}

	var exitError *exec.ExitError
	if !errors.As(waitError, &exitError) {
		return waitError
	}

	if waitStatus, statusAvailable := exitError.Sys().(syscall.WaitStatus); statusAvailable && waitStatus.Signaled() {
		return CommandFailedError{ExitCode: signalExitCodeBaseConstant + int(waitStatus.Signal())}
	}

	return CommandFailedError{ExitCode: exitError.ExitCode()}
}
