package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/iz/internal/config"
	"github.com/temirov/iz/internal/prompt"
	"github.com/temirov/iz/internal/utils"
	"github.com/temirov/iz/internal/workspace"
)

const (
	cleanCommandUseConstant              = "clean"
	cleanCommandShortDescriptionConstant = "Remove leftover temporary workspaces"
	cleanCommandLongDescriptionConstant  = "clean removes every workspace directory under the effective temporary directory base, asking for confirmation unless forced."
	forceFlagNameConstant                = "force"
	forceFlagUsageConstant               = "Remove workspaces without asking for confirmation."
	cleanAbortedMessageConstant          = "Clean aborted."
	cleanSummaryMessageTemplateConstant  = "Removed %d workspace directories.\n"
	cleanNothingToRemoveMessageConstant  = "No workspace directories to remove."
)

// CleanCommandBuilder assembles the clean command.
type CleanCommandBuilder struct {
	LoggerProvider                   func() *zap.Logger
	ProjectConfigurationPathProvider func() string
}

// Build constructs the clean command.
func (builder *CleanCommandBuilder) Build() (*cobra.Command, error) {
	var tempDirectoryFlagValue string
	var forceFlagValue bool

	cleanCommand := &cobra.Command{
		Use:   cleanCommandUseConstant,
		Short: cleanCommandShortDescriptionConstant,
		Long:  cleanCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.execute(command, tempDirectoryFlagValue, forceFlagValue)
		},
	}

	cleanCommand.Flags().StringVar(&tempDirectoryFlagValue, tempDirectoryFlagNameConstant, "", tempDirectoryFlagUsageConstant)
	cleanCommand.Flags().BoolVar(&forceFlagValue, forceFlagNameConstant, false, forceFlagUsageConstant)

	return cleanCommand, nil
}

func (builder *CleanCommandBuilder) execute(command *cobra.Command, tempDirectoryFlagValue string, forceFlagValue bool) error {
	logger := builder.logger()

	projectConfiguration, configurationError := config.LoadProjectConfiguration(builder.projectConfigurationPath(command))
	if configurationError != nil {
		return configurationError
	}

	overrides := config.Overrides{
		TempDirectory:    tempDirectoryFlagValue,
		TempDirectorySet: command.Flags().Changed(tempDirectoryFlagNameConstant),
	}
	effectiveConfiguration := config.NewResolver().Resolve(projectConfiguration, overrides)

	sweeper, sweeperError := workspace.NewSweeper(workspace.SweeperDependencies{
		Logger:   logger,
		Prompter: prompt.NewIOConfirmationPrompter(command.InOrStdin(), command.ErrOrStderr()),
	})
	if sweeperError != nil {
		return sweeperError
	}

	report, sweepError := sweeper.Sweep(effectiveConfiguration.TempDirectoryBase, forceFlagValue)
	if report.Declined {
		fmt.Fprintln(command.OutOrStdout(), cleanAbortedMessageConstant)
		return nil
	}
	if sweepError != nil {
		return sweepError
	}

	if len(report.Removed) == 0 {
		fmt.Fprintln(command.OutOrStdout(), cleanNothingToRemoveMessageConstant)
		return nil
	}

	fmt.Fprintf(command.OutOrStdout(), cleanSummaryMessageTemplateConstant, len(report.Removed))
	return nil
}

func (builder *CleanCommandBuilder) logger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if providedLogger := builder.LoggerProvider(); providedLogger != nil {
		return providedLogger
	}
	return zap.NewNop()
}

func (builder *CleanCommandBuilder) projectConfigurationPath(command *cobra.Command) string {
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
