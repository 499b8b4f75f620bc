package workspace

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	workspaceNameTemplateConstant              = "iz-%d-%08x"
	workspaceNamePatternConstant               = `^iz-\d+-[0-9a-f]{8}$`
	workspaceDirectoryPermissionsConstant      = 0o755
	workspaceCreationAttemptLimitConstant      = 8
	workspaceRandomSuffixByteLengthConstant    = 4
	baseDirectoryCreateErrorTemplateConstant   = "unable to create temporary directory base %s: %w"
	workspaceCreateErrorTemplateConstant       = "unable to create workspace under %s: %w"
	workspaceCollisionErrorTemplateConstant    = "unable to pick a unique workspace name under %s"
	workspaceRandomnessErrorTemplateConstant   = "unable to generate workspace name: %w"
	workspaceRemoveErrorTemplateConstant       = "unable to remove workspace %s: %w"
	workspaceOverlapErrorTemplateConstant      = "workspace %s would contain the working directory %s"
	workingDirectoryResolveTemplateConstant    = "unable to resolve directory %s: %w"
	workspacePathSeparatorSuffixFormatConstant = "%s%c"
)

var workspaceNamePattern = regexp.MustCompile(workspaceNamePatternConstant)

// Workspace is one session's temporary directory and the obligation to remove it.
//
// Destroy is idempotent and Retain disarms it, so callers can defer Destroy
// unconditionally and still honor a keep request decided later.
type Workspace struct {
	path        string
	retained    bool
	stateMutex  sync.Mutex
	destroyOnce sync.Once
	destroyErr  error
}

// Create makes the temporary directory base and a fresh uniquely named workspace inside it.
func Create(baseDirectory string) (*Workspace, error) {
	if mkdirError := os.MkdirAll(baseDirectory, workspaceDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(baseDirectoryCreateErrorTemplateConstant, baseDirectory, mkdirError)
	}

	for attempt := 0; attempt < workspaceCreationAttemptLimitConstant; attempt++ {
		workspaceName, nameError := generateWorkspaceName()
		if nameError != nil {
			return nil, nameError
		}

		workspacePath := filepath.Join(baseDirectory, workspaceName)
		mkdirError := os.Mkdir(workspacePath, workspaceDirectoryPermissionsConstant)
		if mkdirError == nil {
			return &Workspace{path: workspacePath}, nil
		}
		if !errors.Is(mkdirError, os.ErrExist) {
			return nil, fmt.Errorf(workspaceCreateErrorTemplateConstant, baseDirectory, mkdirError)
		}
	}

	return nil, fmt.Errorf(workspaceCollisionErrorTemplateConstant, baseDirectory)
}

// Path returns the absolute or relative path of the workspace directory.
func (workspaceInstance *Workspace) Path() string {
	return workspaceInstance.path
}

// Retain marks the workspace as kept so Destroy leaves it in place.
func (workspaceInstance *Workspace) Retain() {
	workspaceInstance.stateMutex.Lock()
	defer workspaceInstance.stateMutex.Unlock()
	workspaceInstance.retained = true
}

// Retained reports whether Retain was called.
func (workspaceInstance *Workspace) Retained() bool {
	workspaceInstance.stateMutex.Lock()
	defer workspaceInstance.stateMutex.Unlock()
	return workspaceInstance.retained
}

// Destroy removes the workspace directory unless the workspace was retained.
//
// Only the first call performs work; later calls return the first call's result.
func (workspaceInstance *Workspace) Destroy() error {
	workspaceInstance.destroyOnce.Do(func() {
		if workspaceInstance.Retained() {
			return
		}
		if removeError := os.RemoveAll(workspaceInstance.path); removeError != nil {
			workspaceInstance.destroyErr = fmt.Errorf(workspaceRemoveErrorTemplateConstant, workspaceInstance.path, removeError)
		}
	})
	return workspaceInstance.destroyErr
}

// MatchesWorkspaceName reports whether a directory name follows the workspace naming convention.
func MatchesWorkspaceName(directoryName string) bool {
	return workspaceNamePattern.MatchString(directoryName)
}

// GuardAgainstWorkingDirectory rejects workspace paths that are the working
// directory itself or one of its ancestors, since destroying such a workspace
// would take the caller's files with it.
func GuardAgainstWorkingDirectory(workspacePath string, workingDirectory string) error {
	absoluteWorkspacePath, workspaceError := filepath.Abs(workspacePath)
	if workspaceError != nil {
		return fmt.Errorf(workingDirectoryResolveTemplateConstant, workspacePath, workspaceError)
	}
	absoluteWorkingDirectory, workingDirectoryError := filepath.Abs(workingDirectory)
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryResolveTemplateConstant, workingDirectory, workingDirectoryError)
	}

	if absoluteWorkspacePath == absoluteWorkingDirectory {
		return fmt.Errorf(workspaceOverlapErrorTemplateConstant, absoluteWorkspacePath, absoluteWorkingDirectory)
	}

	workspacePrefix := fmt.Sprintf(workspacePathSeparatorSuffixFormatConstant, absoluteWorkspacePath, os.PathSeparator)
	if strings.HasPrefix(absoluteWorkingDirectory, workspacePrefix) {
		return fmt.Errorf(workspaceOverlapErrorTemplateConstant, absoluteWorkspacePath, absoluteWorkingDirectory)
	}

	return nil
}

func generateWorkspaceName() (string, error) {
	randomSuffix := make([]byte, workspaceRandomSuffixByteLengthConstant)
	if _, randomError := rand.Read(randomSuffix); randomError != nil {
		return "", fmt.Errorf(workspaceRandomnessErrorTemplateConstant, randomError)
	}

	suffixValue := uint32(randomSuffix[0])<<24 | uint32(randomSuffix[1])<<16 | uint32(randomSuffix[2])<<8 | uint32(randomSuffix[3])
	return fmt.Sprintf(workspaceNameTemplateConstant, time.Now().UnixMilli(), suffixValue), nil
}
