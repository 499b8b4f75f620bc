package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/iz/internal/config"
	"github.com/temirov/iz/internal/utils"
)

const (
	readmeRelativePathConstant    = ".."
	readmeFileNameConstant        = "README.md"
	jsonFenceLanguageConstant     = "json"
	yamlFenceLanguageConstant     = "yaml"
	codeFenceMarkerConstant       = "```"
	commonSectionKeyConstant      = "common"
	logLevelSectionKeyConstant    = "log_level"
	logFormatSectionKeyConstant   = "log_format"
	readmeTempDirectoryConstant   = ".iztemp"
	readmeTestCommandNameConstant = "test"
)

func readFencedBlock(testInstance *testing.T, documentContent string, fenceLanguage string) string {
	testInstance.Helper()

	documentLines := strings.Split(documentContent, "\n")
	for lineIndex := 0; lineIndex < len(documentLines); lineIndex++ {
		if strings.TrimSpace(documentLines[lineIndex]) != codeFenceMarkerConstant+fenceLanguage {
			continue
		}
		var blockLines []string
		for blockIndex := lineIndex + 1; blockIndex < len(documentLines); blockIndex++ {
			if strings.TrimSpace(documentLines[blockIndex]) == codeFenceMarkerConstant {
				return strings.Join(blockLines, "\n")
			}
			blockLines = append(blockLines, documentLines[blockIndex])
		}
	}

	testInstance.Fatalf("no %s code fence found in %s", fenceLanguage, readmeFileNameConstant)
	return ""
}

func readReadme(testInstance *testing.T) string {
	testInstance.Helper()
	readmeContent, readError := os.ReadFile(filepath.Join(readmeRelativePathConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)
	return string(readmeContent)
}

func TestReadmeProjectConfigurationExampleIsValid(testInstance *testing.T) {
	jsonExample := readFencedBlock(testInstance, readReadme(testInstance), jsonFenceLanguageConstant)

	var projectConfiguration config.ProjectConfiguration
	require.NoError(testInstance, json.Unmarshal([]byte(jsonExample), &projectConfiguration))

	require.NotEmpty(testInstance, projectConfiguration.Commands)
	require.Contains(testInstance, projectConfiguration.Commands, readmeTestCommandNameConstant)
	require.Equal(testInstance, readmeTempDirectoryConstant, projectConfiguration.TempDirectory)
	require.NotNil(testInstance, projectConfiguration.Keep)
}

func TestReadmeToolConfigurationExampleIsValid(testInstance *testing.T) {
	yamlExample := readFencedBlock(testInstance, readReadme(testInstance), yamlFenceLanguageConstant)

	var toolConfiguration map[string]map[string]string
	require.NoError(testInstance, yaml.Unmarshal([]byte(yamlExample), &toolConfiguration))

	commonSection, commonSectionPresent := toolConfiguration[commonSectionKeyConstant]
	require.True(testInstance, commonSectionPresent)

	loggerFactory := utils.NewLoggerFactory()
	_, loggerError := loggerFactory.CreateLogger(
		utils.LogLevel(commonSection[logLevelSectionKeyConstant]),
		utils.LogFormat(commonSection[logFormatSectionKeyConstant]),
	)
	require.NoError(testInstance, loggerError)
}
