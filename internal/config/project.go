package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	// DefaultProjectConfigurationFileName is the file iz looks for in the working directory.
	DefaultProjectConfigurationFileName = "izconfig.json"
	// DefaultTempDirectoryName is used when no other layer supplies a temporary directory base.
	DefaultTempDirectoryName = ".iztemp"
	// TempDirectoryEnvironmentVariable overrides the temporary directory base below CLI flags.
	TempDirectoryEnvironmentVariable = "IZTEMP"

	projectConfigurationTypeConstant            = "json"
	configurationMissingReasonTemplateConstant  = "%s not found; example content:\n%s"
	configurationReadReasonTemplateConstant     = "unable to read %s"
	configurationParseReasonTemplateConstant    = "unable to parse %s"
	configurationCommandsMissingReasonTemplate  = "%s must define at least one entry under \"commands\""
	configurationErrorMessageTemplateConstant   = "invalid configuration: %s"
	exampleRunCommandNameConstant               = "run"
	exampleBuildCommandNameConstant             = "build"
	exampleTestCommandNameConstant              = "test"
	exampleRunCommandTemplateConstant           = "dotnet run"
	exampleBuildCommandTemplateConstant         = "dotnet build"
	exampleTestCommandTemplateConstant          = "dotnet test"
	exampleRenderingFallbackConstant            = "{}"
	exampleConfigurationIndentConstant          = "  "
	exampleConfigurationMarshalPrefixConstant   = ""
)

// ProjectConfiguration mirrors the izconfig.json document.
//
// Commands maps command names to templates containing #{name} placeholders.
// TempDirectory and Keep are optional and sit below environment and CLI layers.
type ProjectConfiguration struct {
	Commands      map[string]string `mapstructure:"commands" json:"commands"`
	TempDirectory string            `mapstructure:"temp_dir" json:"temp_dir,omitempty"`
	Keep          *bool             `mapstructure:"keep" json:"keep,omitempty"`
}

// ConfigError reports missing or invalid project configuration.
type ConfigError struct {
	Reason string
	Cause  error
}

// Error renders the configuration failure reason.
func (configurationError ConfigError) Error() string {
	return fmt.Sprintf(configurationErrorMessageTemplateConstant, configurationError.Reason)
}

// Unwrap exposes the underlying cause when one exists.
func (configurationError ConfigError) Unwrap() error {
	return configurationError.Cause
}

// LoadProjectConfiguration reads and validates the izconfig document at the provided path.
//
// A missing file is a ConfigError whose reason embeds an example configuration body.
func LoadProjectConfiguration(configurationFilePath string) (ProjectConfiguration, error) {
	if _, statError := os.Stat(configurationFilePath); statError != nil {
		if os.IsNotExist(statError) {
			return ProjectConfiguration{}, ConfigError{
				Reason: fmt.Sprintf(configurationMissingReasonTemplateConstant, configurationFilePath, renderExampleConfiguration()),
				Cause:  statError,
			}
		}
		return ProjectConfiguration{}, ConfigError{
			Reason: fmt.Sprintf(configurationReadReasonTemplateConstant, configurationFilePath),
			Cause:  statError,
		}
	}

	viperInstance := viper.New()
	viperInstance.SetConfigFile(configurationFilePath)
	viperInstance.SetConfigType(projectConfigurationTypeConstant)

	if readError := viperInstance.ReadInConfig(); readError != nil {
		return ProjectConfiguration{}, ConfigError{
			Reason: fmt.Sprintf(configurationParseReasonTemplateConstant, configurationFilePath),
			Cause:  readError,
		}
	}

	var projectConfiguration ProjectConfiguration
	if unmarshalError := viperInstance.Unmarshal(&projectConfiguration); unmarshalError != nil {
		return ProjectConfiguration{}, ConfigError{
			Reason: fmt.Sprintf(configurationParseReasonTemplateConstant, configurationFilePath),
			Cause:  unmarshalError,
		}
	}

	if len(projectConfiguration.Commands) == 0 {
		return ProjectConfiguration{}, ConfigError{
			Reason: fmt.Sprintf(configurationCommandsMissingReasonTemplate, configurationFilePath),
		}
	}

	return projectConfiguration, nil
}

func renderExampleConfiguration() string {
	keepDisabled := false
	exampleConfiguration := ProjectConfiguration{
		Commands: map[string]string{
			exampleRunCommandNameConstant:   exampleRunCommandTemplateConstant,
			exampleBuildCommandNameConstant: exampleBuildCommandTemplateConstant,
			exampleTestCommandNameConstant:  exampleTestCommandTemplateConstant,
		},
		TempDirectory: DefaultTempDirectoryName,
		Keep:          &keepDisabled,
	}

	renderedExample, marshalError := json.MarshalIndent(exampleConfiguration, exampleConfigurationMarshalPrefixConstant, exampleConfigurationIndentConstant)
	if marshalError != nil {
		return exampleRenderingFallbackConstant
	}
	return string(renderedExample)
}
