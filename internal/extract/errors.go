package extract

import "fmt"

// ExtractionErrorKind classifies extraction failures.
type ExtractionErrorKind string

const (
	// ExtractionErrorKindRepositoryNotFound indicates the working directory is not inside a git work tree.
	ExtractionErrorKindRepositoryNotFound ExtractionErrorKind = "repository_not_found"
	// ExtractionErrorKindCommitNotFound indicates the commit reference does not resolve to a commit.
	ExtractionErrorKindCommitNotFound ExtractionErrorKind = "commit_not_found"
	// ExtractionErrorKindDestinationNotEmpty indicates the destination directory already holds entries.
	ExtractionErrorKindDestinationNotEmpty ExtractionErrorKind = "destination_not_empty"
	// ExtractionErrorKindArchiveFailed indicates producing or unpacking the commit archive failed.
	ExtractionErrorKindArchiveFailed ExtractionErrorKind = "archive_failed"

	repositoryNotFoundMessageTemplateConstant  = "not inside a git repository"
	commitNotFoundMessageTemplateConstant      = "commit %q not found"
	destinationNotEmptyMessageTemplateConstant = "destination directory is not empty"
	archiveFailedMessageTemplateConstant       = "unable to extract commit %q"
)

// ExtractionError reports a failure to materialize a commit into a workspace.
type ExtractionError struct {
	Kind            ExtractionErrorKind
	CommitReference string
	Cause           error
}

// Error renders a kind-specific message.
func (extractionError ExtractionError) Error() string {
	switch extractionError.Kind {
	case ExtractionErrorKindRepositoryNotFound:
		return repositoryNotFoundMessageTemplateConstant
	case ExtractionErrorKindCommitNotFound:
		return fmt.Sprintf(commitNotFoundMessageTemplateConstant, extractionError.CommitReference)
	case ExtractionErrorKindDestinationNotEmpty:
		return destinationNotEmptyMessageTemplateConstant
	default:
		return fmt.Sprintf(archiveFailedMessageTemplateConstant, extractionError.CommitReference)
	}
}

// Unwrap exposes the underlying cause when one exists.
func (extractionError ExtractionError) Unwrap() error {
	return extractionError.Cause
}
