package tests

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/iz/cmd/cli"
	"github.com/temirov/iz/internal/workspace"
)

const (
	gitExecutableConstant               = "git"
	gitUserNameArgumentConstant         = "user.name=iz-tests"
	gitUserEmailArgumentConstant        = "user.email=iz-tests@example.com"
	trackedFileNameConstant             = "version.txt"
	firstRevisionContentConstant        = "v1\n"
	secondRevisionContentConstant       = "v2\n"
	projectConfigurationNameConstant    = "izconfig.json"
	projectConfigurationBodyConstant    = `{"commands":{"show":"cat version.txt","greet":"echo Merhaba #{name}!","fail":"false"}}`
	tempDirectoryBaseNameConstant       = ".iztemp"
	workspaceKeptMessageFragment        = "Workspace kept at"
	cleanSummaryMessageFragmentConstant = "Removed 1 workspace directories."
)

func changeWorkingDirectory(testInstance *testing.T, directoryPath string) {
	testInstance.Helper()

	originalDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(directoryPath))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalDirectory))
	})
}

func runGitCommand(testInstance *testing.T, repositoryPath string, gitArguments ...string) string {
	testInstance.Helper()

	configuredArguments := append([]string{"-c", gitUserNameArgumentConstant, "-c", gitUserEmailArgumentConstant}, gitArguments...)
	gitCommand := exec.Command(gitExecutableConstant, configuredArguments...)
	gitCommand.Dir = repositoryPath
	commandOutput, commandError := gitCommand.CombinedOutput()
	require.NoError(testInstance, commandError, string(commandOutput))
	return strings.TrimSpace(string(commandOutput))
}

func createScratchRepository(testInstance *testing.T) (string, string) {
	testInstance.Helper()

	repositoryPath := testInstance.TempDir()
	runGitCommand(testInstance, repositoryPath, "init", "--quiet")

	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, trackedFileNameConstant), []byte(firstRevisionContentConstant), 0o644))
	runGitCommand(testInstance, repositoryPath, "add", trackedFileNameConstant)
	runGitCommand(testInstance, repositoryPath, "commit", "--quiet", "--message", "first revision")

	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, trackedFileNameConstant), []byte(secondRevisionContentConstant), 0o644))
	runGitCommand(testInstance, repositoryPath, "add", trackedFileNameConstant)
	runGitCommand(testInstance, repositoryPath, "commit", "--quiet", "--message", "second revision")

	firstCommit := runGitCommand(testInstance, repositoryPath, "rev-parse", "HEAD~1")
	return repositoryPath, firstCommit
}

func writeProjectConfiguration(testInstance *testing.T, repositoryPath string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, projectConfigurationNameConstant), []byte(projectConfigurationBodyConstant), 0o644))
}

func executeApplication(testInstance *testing.T, commandArguments ...string) (string, error) {
	testInstance.Helper()

	application := cli.NewApplication()
	rootCommand := application.RootCommand()

	var commandOutput bytes.Buffer
	rootCommand.SetOut(&commandOutput)
	rootCommand.SetErr(&commandOutput)
	rootCommand.SetArgs(commandArguments)

	executionError := application.Execute()
	return commandOutput.String(), executionError
}

func listWorkspaceDirectories(testInstance *testing.T, repositoryPath string) []string {
	testInstance.Helper()

	directoryEntries, readError := os.ReadDir(filepath.Join(repositoryPath, tempDirectoryBaseNameConstant))
	if os.IsNotExist(readError) {
		return nil
	}
	require.NoError(testInstance, readError)

	var workspaceDirectories []string
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() && workspace.MatchesWorkspaceName(directoryEntry.Name()) {
			workspaceDirectories = append(workspaceDirectories, filepath.Join(repositoryPath, tempDirectoryBaseNameConstant, directoryEntry.Name()))
		}
	}
	return workspaceDirectories
}

func TestRunExecutesCommandAgainstEarlierCommit(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	commandOutput, executionError := executeApplication(testInstance, "run", firstCommit, "show")
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, commandOutput, strings.TrimSpace(firstRevisionContentConstant))
	require.Empty(testInstance, listWorkspaceDirectories(testInstance, repositoryPath))

	workingTreeContent, readError := os.ReadFile(filepath.Join(repositoryPath, trackedFileNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, secondRevisionContentConstant, string(workingTreeContent))
}

func TestRunSubstitutesTemplateParameters(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	commandOutput, executionError := executeApplication(testInstance, "run", firstCommit, "greet", "--param", "name=Ali")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, commandOutput, "Merhaba Ali!")
}

func TestRunKeepRetainsWorkspace(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	commandOutput, executionError := executeApplication(testInstance, "run", firstCommit, "show", "--keep")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, commandOutput, workspaceKeptMessageFragment)

	workspaceDirectories := listWorkspaceDirectories(testInstance, repositoryPath)
	require.Len(testInstance, workspaceDirectories, 1)

	extractedContent, readError := os.ReadFile(filepath.Join(workspaceDirectories[0], trackedFileNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, firstRevisionContentConstant, string(extractedContent))
}

func TestCleanRemovesKeptWorkspaces(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	_, runError := executeApplication(testInstance, "run", firstCommit, "show", "--keep")
	require.NoError(testInstance, runError)
	require.Len(testInstance, listWorkspaceDirectories(testInstance, repositoryPath), 1)

	cleanOutput, cleanError := executeApplication(testInstance, "clean", "--force")
	require.NoError(testInstance, cleanError)
	require.Contains(testInstance, cleanOutput, cleanSummaryMessageFragmentConstant)
	require.Empty(testInstance, listWorkspaceDirectories(testInstance, repositoryPath))
}

func TestRunFailingCommandPropagatesExitCode(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	_, executionError := executeApplication(testInstance, "run", firstCommit, "fail")
	require.Error(testInstance, executionError)
	require.Equal(testInstance, 1, cli.ExitCodeFor(executionError))
	require.Empty(testInstance, listWorkspaceDirectories(testInstance, repositoryPath))
}

func TestRunUnknownCommitFails(testInstance *testing.T) {
	repositoryPath, _ := createScratchRepository(testInstance)
	writeProjectConfiguration(testInstance, repositoryPath)
	changeWorkingDirectory(testInstance, repositoryPath)

	_, executionError := executeApplication(testInstance, "run", "does-not-exist", "show")
	require.Error(testInstance, executionError)
	require.Equal(testInstance, cli.CoreFailureExitCode, cli.ExitCodeFor(executionError))
	require.Empty(testInstance, listWorkspaceDirectories(testInstance, repositoryPath))
}

func TestRunWithoutProjectConfigurationFails(testInstance *testing.T) {
	repositoryPath, firstCommit := createScratchRepository(testInstance)
	changeWorkingDirectory(testInstance, repositoryPath)

	_, executionError := executeApplication(testInstance, "run", firstCommit, "show")
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), projectConfigurationNameConstant)
}
