package extract

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/iz/internal/execshell"
)

const (
	gitRevParseSubcommandConstant              = "rev-parse"
	gitArchiveSubcommandConstant               = "archive"
	gitInsideWorkTreeFlagConstant              = "--is-inside-work-tree"
	gitVerifyFlagConstant                      = "--verify"
	gitQuietFlagConstant                       = "--quiet"
	gitArchiveFormatFlagConstant               = "--format=tar"
	gitCommitReferenceSuffixConstant           = "^{commit}"
	globalPaxHeaderNameConstant                = "pax_global_header"
	extractedFilePermissionMaskConstant        = 0o777
	extractedDirectoryPermissionsConstant      = os.FileMode(0o755)
	destinationListErrorTemplateConstant       = "unable to inspect destination %s: %w"
	archiveEntryEscapesMessageTemplateConstant = "archive entry %q escapes the destination"
	archiveEntryKindMessageTemplateConstant    = "unsupported archive entry %q of type %d"
)

// GitExecutor runs git commands; the shell executor satisfies it.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitExtractor verifies a commit reference and materializes its files.
type CommitExtractor interface {
	ResolveCommit(executionContext context.Context, repositoryPath string, commitReference string) (string, error)
	Extract(executionContext context.Context, repositoryPath string, commitReference string, destinationPath string) error
}

// GitCommitExtractor materializes commits through git archive.
type GitCommitExtractor struct {
	gitExecutor GitExecutor
}

// NewGitCommitExtractor constructs an extractor backed by the provided git executor.
func NewGitCommitExtractor(gitExecutor GitExecutor) *GitCommitExtractor {
	return &GitCommitExtractor{gitExecutor: gitExecutor}
}

// ResolveCommit checks that the repository exists and that the reference names a
// commit, returning the resolved commit hash.
func (extractor *GitCommitExtractor) ResolveCommit(executionContext context.Context, repositoryPath string, commitReference string) (string, error) {
	insideWorkTreeDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitInsideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}
	if _, executionError := extractor.gitExecutor.ExecuteGit(executionContext, insideWorkTreeDetails); executionError != nil {
		return "", ExtractionError{Kind: ExtractionErrorKindRepositoryNotFound, CommitReference: commitReference, Cause: executionError}
	}

	verifyDetails := execshell.CommandDetails{
		Arguments: []string{
			gitRevParseSubcommandConstant,
			gitVerifyFlagConstant,
			gitQuietFlagConstant,
			commitReference + gitCommitReferenceSuffixConstant,
		},
		WorkingDirectory: repositoryPath,
	}
	verifyResult, verifyError := extractor.gitExecutor.ExecuteGit(executionContext, verifyDetails)
	if verifyError != nil {
		return "", ExtractionError{Kind: ExtractionErrorKindCommitNotFound, CommitReference: commitReference, Cause: verifyError}
	}

	return strings.TrimSpace(verifyResult.StandardOutput), nil
}

// Extract unpacks the commit's tracked files into the destination directory.
//
// The destination must be empty. Archive entries are confined to the
// destination; entries that would escape it fail the extraction.
func (extractor *GitCommitExtractor) Extract(executionContext context.Context, repositoryPath string, commitReference string, destinationPath string) error {
	destinationEntries, listError := os.ReadDir(destinationPath)
	if listError != nil {
		return fmt.Errorf(destinationListErrorTemplateConstant, destinationPath, listError)
	}
	if len(destinationEntries) > 0 {
		return ExtractionError{Kind: ExtractionErrorKindDestinationNotEmpty, CommitReference: commitReference}
	}

	archiveDetails := execshell.CommandDetails{
		Arguments:        []string{gitArchiveSubcommandConstant, gitArchiveFormatFlagConstant, commitReference},
		WorkingDirectory: repositoryPath,
	}
	archiveResult, archiveError := extractor.gitExecutor.ExecuteGit(executionContext, archiveDetails)
	if archiveError != nil {
		return ExtractionError{Kind: ExtractionErrorKindArchiveFailed, CommitReference: commitReference, Cause: archiveError}
	}

	if unpackError := unpackTarArchive(strings.NewReader(archiveResult.StandardOutput), destinationPath); unpackError != nil {
		return ExtractionError{Kind: ExtractionErrorKindArchiveFailed, CommitReference: commitReference, Cause: unpackError}
	}

	return nil
}

func unpackTarArchive(archiveReader io.Reader, destinationPath string) error {
	tarReader := tar.NewReader(archiveReader)

	for {
		entryHeader, readError := tarReader.Next()
		if errors.Is(readError, io.EOF) {
			return nil
		}
		if readError != nil {
			return readError
		}

		entryName := filepath.Clean(entryHeader.Name)
		if entryName == globalPaxHeaderNameConstant {
			continue
		}
		if !filepath.IsLocal(entryName) {
			return fmt.Errorf(archiveEntryEscapesMessageTemplateConstant, entryHeader.Name)
		}

		entryPath := filepath.Join(destinationPath, entryName)
		switch entryHeader.Typeflag {
		case tar.TypeDir:
			if mkdirError := os.MkdirAll(entryPath, extractedDirectoryPermissionsConstant); mkdirError != nil {
				return mkdirError
			}
		case tar.TypeReg:
			if writeError := writeExtractedFile(tarReader, entryPath, entryHeader); writeError != nil {
				return writeError
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(entryHeader.Linkname) {
				return fmt.Errorf(archiveEntryEscapesMessageTemplateConstant, entryHeader.Name)
			}
			if mkdirError := os.MkdirAll(filepath.Dir(entryPath), extractedDirectoryPermissionsConstant); mkdirError != nil {
				return mkdirError
			}
			if symlinkError := os.Symlink(entryHeader.Linkname, entryPath); symlinkError != nil {
				return symlinkError
			}
		case tar.TypeXGlobalHeader:
			continue
		default:
			return fmt.Errorf(archiveEntryKindMessageTemplateConstant, entryHeader.Name, entryHeader.Typeflag)
		}
	}
}

func writeExtractedFile(contentReader io.Reader, entryPath string, entryHeader *tar.Header) error {
	if mkdirError := os.MkdirAll(filepath.Dir(entryPath), extractedDirectoryPermissionsConstant); mkdirError != nil {
		return mkdirError
	}

	filePermissions := os.FileMode(entryHeader.Mode) & extractedFilePermissionMaskConstant
	extractedFile, createError := os.OpenFile(entryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if createError != nil {
		return createError
	}

	if _, copyError := io.Copy(extractedFile, contentReader); copyError != nil {
		extractedFile.Close()
		return copyError
	}
	return extractedFile.Close()
}
