package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/iz/internal/prompt"
)

const (
	sweepPromptTemplateConstant             = "Remove %d workspace directories under %s? [y/N]: "
	sweepFailureSummaryTemplateConstant     = "failed to remove %d of %d workspace directories under %s"
	sweepLoggerMissingMessageConstant       = "sweeper requires a logger"
	sweepPrompterMissingMessageConstant     = "sweeper requires a confirmation prompter"
	sweepStartedLogMessageConstant          = "sweeping workspaces"
	sweepRemovedLogMessageConstant          = "removed workspace"
	sweepSkippedLogMessageConstant          = "workspace vanished before removal"
	sweepFailedLogMessageConstant           = "failed to remove workspace"
	sweepWorkspacePathLogFieldNameConstant  = "workspace_path"
	sweepBaseDirectoryLogFieldNameConstant  = "temp_directory_base"
	sweepCandidateCountLogFieldNameConstant = "candidate_count"
)

// ErrSweeperLoggerMissing indicates a sweeper was built without a logger.
var ErrSweeperLoggerMissing = errors.New(sweepLoggerMissingMessageConstant)

// ErrSweeperPrompterMissing indicates a sweeper was built without a prompter.
var ErrSweeperPrompterMissing = errors.New(sweepPrompterMissingMessageConstant)

// SweepFailure records one workspace directory that could not be removed.
type SweepFailure struct {
	Path  string
	Cause error
}

// SweepReport summarizes one clean pass over a temporary directory base.
type SweepReport struct {
	Removed  []string
	Skipped  []string
	Failures []SweepFailure
	Declined bool
}

// SweeperDependencies carries the collaborators a Sweeper needs.
type SweeperDependencies struct {
	Logger   *zap.Logger
	Prompter prompt.ConfirmationPrompter
}

// Sweeper removes leftover workspace directories beneath a temporary directory base.
type Sweeper struct {
	logger   *zap.Logger
	prompter prompt.ConfirmationPrompter
}

// NewSweeper validates the dependencies and constructs a sweeper.
func NewSweeper(dependencies SweeperDependencies) (*Sweeper, error) {
	if dependencies.Logger == nil {
		return nil, ErrSweeperLoggerMissing
	}
	if dependencies.Prompter == nil {
		return nil, ErrSweeperPrompterMissing
	}
	return &Sweeper{logger: dependencies.Logger, prompter: dependencies.Prompter}, nil
}

// Sweep removes every directory under baseDirectory whose name follows the
// workspace naming convention.
//
// A missing base directory is a successful no-op. Unless force is set, the
// sweep asks for confirmation once before removing anything; a declined
// confirmation leaves every candidate in place and marks the report declined.
// Candidates that vanish between listing and removal are skipped. Removal
// failures are collected rather than aborting the sweep, and the returned
// error summarizes them.
func (sweeper *Sweeper) Sweep(baseDirectory string, force bool) (SweepReport, error) {
	var report SweepReport

	directoryEntries, readError := os.ReadDir(baseDirectory)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return report, nil
		}
		return report, fmt.Errorf(workingDirectoryResolveTemplateConstant, baseDirectory, readError)
	}

	var candidatePaths []string
	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}
		if !MatchesWorkspaceName(directoryEntry.Name()) {
			continue
		}
		candidatePaths = append(candidatePaths, filepath.Join(baseDirectory, directoryEntry.Name()))
	}

	if len(candidatePaths) == 0 {
		return report, nil
	}

	if !force {
		confirmed, promptError := sweeper.prompter.Confirm(fmt.Sprintf(sweepPromptTemplateConstant, len(candidatePaths), baseDirectory))
		if promptError != nil {
			return report, promptError
		}
		if !confirmed {
			report.Declined = true
			return report, nil
		}
	}

	sweeper.logger.Debug(sweepStartedLogMessageConstant,
		zap.String(sweepBaseDirectoryLogFieldNameConstant, baseDirectory),
		zap.Int(sweepCandidateCountLogFieldNameConstant, len(candidatePaths)))

	for _, candidatePath := range candidatePaths {
		if _, statError := os.Lstat(candidatePath); statError != nil {
			if errors.Is(statError, os.ErrNotExist) {
				report.Skipped = append(report.Skipped, candidatePath)
				sweeper.logger.Debug(sweepSkippedLogMessageConstant, zap.String(sweepWorkspacePathLogFieldNameConstant, candidatePath))
				continue
			}
			report.Failures = append(report.Failures, SweepFailure{Path: candidatePath, Cause: statError})
			continue
		}

		if removeError := os.RemoveAll(candidatePath); removeError != nil {
			report.Failures = append(report.Failures, SweepFailure{Path: candidatePath, Cause: removeError})
			sweeper.logger.Warn(sweepFailedLogMessageConstant,
				zap.String(sweepWorkspacePathLogFieldNameConstant, candidatePath),
				zap.Error(removeError))
			continue
		}

		report.Removed = append(report.Removed, candidatePath)
		sweeper.logger.Info(sweepRemovedLogMessageConstant, zap.String(sweepWorkspacePathLogFieldNameConstant, candidatePath))
	}

	if len(report.Failures) > 0 {
		return report, fmt.Errorf(sweepFailureSummaryTemplateConstant, len(report.Failures), len(candidatePaths), baseDirectory)
	}

	return report, nil
}
