package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	artifactTemporaryPattern = ".%s.tmp-*"
	artifactFileMode         = 0o644
)

// WriteArtifact replaces path with content. The content is staged in a temporary file in the same
// directory and renamed into place, so a failed write never leaves a partial artifact behind.
func WriteArtifact(path string, content string) (err error) {
	directory := filepath.Dir(path)
	temporaryFile, createError := os.CreateTemp(directory, fmt.Sprintf(artifactTemporaryPattern, filepath.Base(path)))
	if createError != nil {
		return fmt.Errorf("create temporary artifact in %s: %w", directory, createError)
	}
	temporaryPath := temporaryFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.WriteString(content); writeError != nil {
		_ = temporaryFile.Close()
		return fmt.Errorf("write artifact %s: %w", path, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf("close artifact %s: %w", path, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, artifactFileMode); chmodError != nil {
		return fmt.Errorf("set permissions on artifact %s: %w", path, chmodError)
	}
	if renameError := os.Rename(temporaryPath, path); renameError != nil {
		return fmt.Errorf("move artifact into place at %s: %w", path, renameError)
	}
	return nil
}
