package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/types"
	"github.com/temirov/code4lm/internal/utils"
)

var (
	// ErrPathOutsideRoot reports a requested path that resolves outside the project root.
	ErrPathOutsideRoot = errors.New("path escapes project root")
	// ErrFileNotFound reports a requested path that does not exist.
	ErrFileNotFound = errors.New("file not found")
)

const (
	accessDeniedMarker = "[Access denied: path escapes project root]"
	fileNotFoundMarker = "[File not found]"

	fetchWarningFormat = "%s: %v"
	fetchDeniedMessage = "fetch denied"
	fetchFailedMessage = "fetch failed"
)

// ResolveWithinRoot anchors requestedPath at rootPath and returns it with symbolic links evaluated.
// ErrPathOutsideRoot is returned when the path leaves the root lexically or through a link,
// ErrFileNotFound when nothing exists there.
func ResolveWithinRoot(rootPath string, requestedPath string) (string, error) {
	absoluteRootPath, rootError := filepath.Abs(rootPath)
	if rootError != nil {
		return "", fmt.Errorf("resolve root %s: %w", rootPath, rootError)
	}
	absoluteRootPath = filepath.Clean(absoluteRootPath)

	candidatePath := filepath.FromSlash(requestedPath)
	if !filepath.IsAbs(candidatePath) {
		candidatePath = filepath.Join(absoluteRootPath, candidatePath)
	}
	candidatePath = filepath.Clean(candidatePath)
	if !utils.IsWithinDirectory(candidatePath, absoluteRootPath) {
		return "", ErrPathOutsideRoot
	}

	resolvedRootPath := absoluteRootPath
	if evaluatedRoot, evaluateError := filepath.EvalSymlinks(absoluteRootPath); evaluateError == nil {
		resolvedRootPath = evaluatedRoot
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(candidatePath)
	if resolveError != nil {
		if errors.Is(resolveError, fs.ErrNotExist) {
			return "", ErrFileNotFound
		}
		return "", resolveError
	}
	if !utils.IsWithinDirectory(resolvedPath, resolvedRootPath) {
		return "", ErrPathOutsideRoot
	}
	return resolvedPath, nil
}

// ReadGuarded reads relativePath under rootPath after confirming it cannot escape the root,
// both lexically and after symbolic links are evaluated.
func ReadGuarded(rootPath string, relativePath string) (string, error) {
	resolvedPath, resolveError := ResolveWithinRoot(rootPath, relativePath)
	if resolveError != nil {
		return "", resolveError
	}

	content, readError := readFileContent(resolvedPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", ErrFileNotFound
		}
		return "", readError
	}
	return content, nil
}

// Fetch concatenates the guarded contents of relativePaths in request order.
// Denied, missing and unreadable paths become inline markers and processing continues.
func Fetch(rootPath string, relativePaths []string, logger *zap.Logger) types.FetchResult {
	logger = utils.LoggerOrNop(logger)
	result := types.FetchResult{Files: []string{}}
	var builder strings.Builder
	afterLineBreak := true

	for _, relativePath := range relativePaths {
		content, readError := ReadGuarded(rootPath, relativePath)
		switch {
		case readError == nil:
			result.Files = append(result.Files, relativePath)
		case errors.Is(readError, ErrPathOutsideRoot):
			content = accessDeniedMarker
			result.Denied = append(result.Denied, relativePath)
			logger.Warn(fetchDeniedMessage, zap.String(logFieldPath, relativePath))
		case errors.Is(readError, ErrFileNotFound):
			content = fileNotFoundMarker
			result.Warnings = append(result.Warnings, fmt.Sprintf(fetchWarningFormat, relativePath, readError))
		default:
			content = output.UnreadableMarker(readError)
			result.Warnings = append(result.Warnings, fmt.Sprintf(fetchWarningFormat, relativePath, readError))
			logger.Warn(fetchFailedMessage, zap.String(logFieldPath, relativePath), zap.String(logFieldReason, readError.Error()))
		}
		builder.WriteString(output.FileBlock(relativePath, content, afterLineBreak))
		afterLineBreak = output.EndsWithLineBreak(content)
	}

	result.Text = builder.String()
	return result
}
