// Package extract verifies commit references and materializes a commit's
// tracked files into a workspace directory using git archive.
package extract
