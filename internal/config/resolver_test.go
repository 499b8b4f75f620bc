package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/iz/internal/config"
)

const (
	testConfigurationFileNameConstant  = "izconfig.json"
	testFileTempDirectoryConstant      = ".cfgtemp"
	testEnvironmentTempDirConstant     = "/tmp/envtemp"
	testFlagTempDirectoryConstant      = "/tmp/cliflag"
	testRunCommandTemplateConstant     = "dotnet run"
	testConfigurationContentConstant   = `{"commands":{"run":"dotnet run","test":"dotnet test"},"temp_dir":".cfgtemp","keep":true}`
	testMinimalConfigurationConstant   = `{"commands":{"run":"dotnet run"}}`
	testEmptyCommandsContentConstant   = `{"commands":{},"temp_dir":".cfgtemp"}`
	testMalformedContentConstant       = `{"commands": not json`
	testUnknownTopLevelKeysConstant    = `{"commands":{"run":"dotnet run"},"future_option":42}`
	testCaseFlagWinsNameConstant       = "cli_flag_overrides_everything"
	testCaseEnvironmentWinsConstant    = "environment_overrides_file"
	testCaseFileWinsNameConstant       = "file_overrides_default"
	testCaseDefaultAppliesConstant     = "default_applies"
	testCaseKeepFlagWinsNameConstant   = "keep_flag_overrides_file"
	testCaseKeepFromFileNameConstant   = "keep_from_file"
	testCaseKeepDefaultNameConstant    = "keep_defaults_false"
)

func writeProjectConfiguration(testInstance *testing.T, content string) string {
	testInstance.Helper()
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o644))
	return configurationPath
}

func environmentWith(values map[string]string) config.EnvironmentLookup {
	return func(variableName string) (string, bool) {
		value, valueSet := values[variableName]
		return value, valueSet
	}
}

func TestLoadProjectConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		missingFile   bool
		expectError   bool
		errorFragment string
	}{
		{
			name:    "full_configuration",
			content: testConfigurationContentConstant,
		},
		{
			name:    "minimal_configuration",
			content: testMinimalConfigurationConstant,
		},
		{
			name:    "unknown_top_level_keys_ignored",
			content: testUnknownTopLevelKeysConstant,
		},
		{
			name:          "missing_file_includes_example",
			missingFile:   true,
			expectError:   true,
			errorFragment: "example content",
		},
		{
			name:          "empty_commands_rejected",
			content:       testEmptyCommandsContentConstant,
			expectError:   true,
			errorFragment: "commands",
		},
		{
			name:        "malformed_json_rejected",
			content:     testMalformedContentConstant,
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
			if !testCase.missingFile {
				require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testCase.content), 0o644))
			}

			projectConfiguration, loadError := config.LoadProjectConfiguration(configurationPath)

			if testCase.expectError {
				require.Error(testInstance, loadError)
				var configurationError config.ConfigError
				require.ErrorAs(testInstance, loadError, &configurationError)
				if len(testCase.errorFragment) > 0 {
					require.Contains(testInstance, loadError.Error(), testCase.errorFragment)
				}
				return
			}

			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testRunCommandTemplateConstant, projectConfiguration.Commands["run"])
		})
	}
}

func TestResolverTempDirectoryPrecedence(testInstance *testing.T) {
	fileConfiguration := config.ProjectConfiguration{
		Commands:      map[string]string{"run": testRunCommandTemplateConstant},
		TempDirectory: testFileTempDirectoryConstant,
	}

	testCases := []struct {
		name              string
		environmentValues map[string]string
		overrides         config.Overrides
		projectConfig     config.ProjectConfiguration
		expectedTempDir   string
	}{
		{
			name:              testCaseFlagWinsNameConstant,
			environmentValues: map[string]string{config.TempDirectoryEnvironmentVariable: testEnvironmentTempDirConstant},
			overrides:         config.Overrides{TempDirectory: testFlagTempDirectoryConstant, TempDirectorySet: true},
			projectConfig:     fileConfiguration,
			expectedTempDir:   testFlagTempDirectoryConstant,
		},
		{
			name:              testCaseEnvironmentWinsConstant,
			environmentValues: map[string]string{config.TempDirectoryEnvironmentVariable: testEnvironmentTempDirConstant},
			projectConfig:     fileConfiguration,
			expectedTempDir:   testEnvironmentTempDirConstant,
		},
		{
			name:            testCaseFileWinsNameConstant,
			projectConfig:   fileConfiguration,
			expectedTempDir: testFileTempDirectoryConstant,
		},
		{
			name: testCaseDefaultAppliesConstant,
			projectConfig: config.ProjectConfiguration{
				Commands: map[string]string{"run": testRunCommandTemplateConstant},
			},
			expectedTempDir: config.DefaultTempDirectoryName,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := config.NewResolverWithEnvironment(environmentWith(testCase.environmentValues))

			effectiveConfiguration := resolver.Resolve(testCase.projectConfig, testCase.overrides)

			require.Equal(testInstance, testCase.expectedTempDir, effectiveConfiguration.TempDirectoryBase)
			require.Equal(testInstance, testCase.projectConfig.Commands, effectiveConfiguration.Commands)
		})
	}
}

func TestResolverKeepPrecedence(testInstance *testing.T) {
	keepEnabled := true

	testCases := []struct {
		name          string
		overrides     config.Overrides
		projectConfig config.ProjectConfiguration
		expectedKeep  bool
	}{
		{
			name:      testCaseKeepFlagWinsNameConstant,
			overrides: config.Overrides{Keep: false, KeepSet: true},
			projectConfig: config.ProjectConfiguration{
				Commands: map[string]string{"run": testRunCommandTemplateConstant},
				Keep:     &keepEnabled,
			},
			expectedKeep: false,
		},
		{
			name: testCaseKeepFromFileNameConstant,
			projectConfig: config.ProjectConfiguration{
				Commands: map[string]string{"run": testRunCommandTemplateConstant},
				Keep:     &keepEnabled,
			},
			expectedKeep: true,
		},
		{
			name: testCaseKeepDefaultNameConstant,
			projectConfig: config.ProjectConfiguration{
				Commands: map[string]string{"run": testRunCommandTemplateConstant},
			},
			expectedKeep: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := config.NewResolverWithEnvironment(environmentWith(nil))

			effectiveConfiguration := resolver.Resolve(testCase.projectConfig, testCase.overrides)

			require.Equal(testInstance, testCase.expectedKeep, effectiveConfiguration.Keep)
		})
	}
}

func TestResolverDoesNotShareCommandsMap(testInstance *testing.T) {
	projectConfiguration := config.ProjectConfiguration{
		Commands: map[string]string{"run": testRunCommandTemplateConstant},
	}

	resolver := config.NewResolverWithEnvironment(environmentWith(nil))
	effectiveConfiguration := resolver.Resolve(projectConfiguration, config.Overrides{})

	projectConfiguration.Commands["run"] = "mutated"
	require.Equal(testInstance, testRunCommandTemplateConstant, effectiveConfiguration.Commands["run"])
}

func TestResolverPrecedenceEndToEnd(testInstance *testing.T) {
	configurationPath := writeProjectConfiguration(testInstance, testConfigurationContentConstant)
	projectConfiguration, loadError := config.LoadProjectConfiguration(configurationPath)
	require.NoError(testInstance, loadError)

	environmentValues := map[string]string{config.TempDirectoryEnvironmentVariable: testEnvironmentTempDirConstant}
	resolver := config.NewResolverWithEnvironment(environmentWith(environmentValues))

	withFlag := resolver.Resolve(projectConfiguration, config.Overrides{TempDirectory: testFlagTempDirectoryConstant, TempDirectorySet: true})
	require.Equal(testInstance, testFlagTempDirectoryConstant, withFlag.TempDirectoryBase)

	withoutFlag := resolver.Resolve(projectConfiguration, config.Overrides{})
	require.Equal(testInstance, testEnvironmentTempDirConstant, withoutFlag.TempDirectoryBase)

	fileOnly := config.NewResolverWithEnvironment(environmentWith(nil)).Resolve(projectConfiguration, config.Overrides{})
	require.Equal(testInstance, testFileTempDirectoryConstant, fileOnly.TempDirectoryBase)
}
