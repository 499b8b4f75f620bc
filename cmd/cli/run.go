package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/iz/internal/config"
	"github.com/temirov/iz/internal/execshell"
	"github.com/temirov/iz/internal/extract"
	"github.com/temirov/iz/internal/session"
	"github.com/temirov/iz/internal/template"
	"github.com/temirov/iz/internal/ui"
	"github.com/temirov/iz/internal/utils"
)

const (
	runCommandUseConstant                  = "run <commit> <command>"
	runCommandShortDescriptionConstant     = "Run a configured command against a historical commit"
	runCommandLongDescriptionConstant      = "run extracts the named commit's tracked files into a fresh temporary workspace, executes the configured command inside it, and removes the workspace unless asked to keep it."
	runCommandArgumentCountConstant        = 2
	parameterFlagNameConstant              = "param"
	parameterFlagUsageConstant             = "Template parameter as key=value; repeatable."
	tempDirectoryFlagNameConstant          = "temp-dir"
	tempDirectoryFlagUsageConstant         = "Base directory for temporary workspaces."
	keepFlagNameConstant                   = "keep"
	keepFlagUsageConstant                  = "Keep the workspace after the command finishes."
	workspaceKeptMessageTemplateConstant   = "Workspace kept at %s\n"
	workingDirectoryErrorTemplateConstant  = "unable to determine working directory: %w"
	commitArgumentIndexConstant            = 0
	commandNameArgumentIndexConstant       = 1
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider                   func() *zap.Logger
	HumanReadableLoggingProvider     func() bool
	ProjectConfigurationPathProvider func() string
	WorkingDirectoryProvider         func() (string, error)
	SignalNotifier                   session.SignalNotifier
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	var parameterAssignments []string
	var tempDirectoryFlagValue string
	var keepFlagValue bool

	runCommand := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(runCommandArgumentCountConstant),
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.execute(command, arguments, parameterAssignments, tempDirectoryFlagValue, keepFlagValue)
		},
	}

	runCommand.Flags().StringArrayVar(&parameterAssignments, parameterFlagNameConstant, nil, parameterFlagUsageConstant)
	runCommand.Flags().StringVar(&tempDirectoryFlagValue, tempDirectoryFlagNameConstant, "", tempDirectoryFlagUsageConstant)
	runCommand.Flags().BoolVar(&keepFlagValue, keepFlagNameConstant, false, keepFlagUsageConstant)

	return runCommand, nil
}

func (builder *RunCommandBuilder) execute(command *cobra.Command, arguments []string, parameterAssignments []string, tempDirectoryFlagValue string, keepFlagValue bool) error {
	logger := builder.logger()

	projectConfiguration, configurationError := config.LoadProjectConfiguration(builder.projectConfigurationPath(command))
	if configurationError != nil {
		return configurationError
	}

	parameters, parameterError := template.ParseParameterAssignments(parameterAssignments)
	if parameterError != nil {
		return parameterError
	}

	overrides := config.Overrides{
		TempDirectory:    tempDirectoryFlagValue,
		TempDirectorySet: command.Flags().Changed(tempDirectoryFlagNameConstant),
		Keep:             keepFlagValue,
		KeepSet:          command.Flags().Changed(keepFlagNameConstant),
	}
	effectiveConfiguration := config.NewResolver().Resolve(projectConfiguration, overrides)

	workingDirectory, workingDirectoryError := builder.workingDirectory()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}

	shellExecutor, executorError := builder.buildShellExecutor(logger)
	if executorError != nil {
		return executorError
	}

	sessionRunner, runnerError := session.NewRunner(session.Dependencies{
		Logger:         logger,
		Extractor:      extract.NewGitCommitExtractor(shellExecutor),
		TemplateEngine: template.NewEngine(),
		SignalNotifier: builder.signalNotifier(),
		Output:         utils.NewFlushingWriter(command.OutOrStdout()),
		Errors:         utils.NewFlushingWriter(command.ErrOrStderr()),
		Input:          command.InOrStdin(),
	})
	if runnerError != nil {
		return runnerError
	}

	result, runError := sessionRunner.Run(command.Context(), session.Request{
		CommitReference:   arguments[commitArgumentIndexConstant],
		CommandName:       arguments[commandNameArgumentIndexConstant],
		Parameters:        parameters,
		Commands:          effectiveConfiguration.Commands,
		TempDirectoryBase: effectiveConfiguration.TempDirectoryBase,
		Keep:              effectiveConfiguration.Keep,
		WorkingDirectory:  workingDirectory,
	})

	if result.WorkspaceRetained {
		fmt.Fprintf(command.OutOrStdout(), workspaceKeptMessageTemplateConstant, result.WorkspacePath)
	}

	return runError
}

func (builder *RunCommandBuilder) buildShellExecutor(logger *zap.Logger) (*execshell.ShellExecutor, error) {
	commandRunner := execshell.NewOSCommandRunner()
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

func (builder *RunCommandBuilder) logger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if providedLogger := builder.LoggerProvider(); providedLogger != nil {
		return providedLogger
	}
	return zap.NewNop()
}

func (builder *RunCommandBuilder) projectConfigurationPath(command *cobra.Command) string {
	if builder.ProjectConfigurationPathProvider != nil {
		if providedPath := builder.ProjectConfigurationPathProvider(); len(providedPath) > 0 {
			return providedPath
		}
	}
	if command != nil {
		if contextPath, contextPathAvailable := utils.NewCommandContextAccessor().ProjectConfigurationPath(command.Context()); contextPathAvailable && len(contextPath) > 0 {
			return contextPath
		}
	}
	return config.DefaultProjectConfigurationFileName
}

func (builder *RunCommandBuilder) workingDirectory() (string, error) {
	if builder.WorkingDirectoryProvider != nil {
		return builder.WorkingDirectoryProvider()
	}
	return os.Getwd()
}

func (builder *RunCommandBuilder) signalNotifier() session.SignalNotifier {
	if builder.SignalNotifier != nil {
		return builder.SignalNotifier
	}
	return session.OSSignalNotifier{}
}
