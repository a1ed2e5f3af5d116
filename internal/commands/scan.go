// Package commands exposes the scan, render and fetch operations consumed by the CLI and the tool server.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/policy"
	"github.com/temirov/code4lm/internal/types"
	"github.com/temirov/code4lm/internal/utils"
	"github.com/temirov/code4lm/internal/walker"
)

const (
	logFieldRoot    = "root"
	logFieldPath    = "path"
	logFieldReason  = "reason"
	logFieldWarning = "warning"

	scanWarningMessage       = "traversal warning"
	unreadableFileMessage    = "could not read file"
	readDirectoryErrorFormat = "%s is a directory"
)

// Scan discovers the tree and the admitted files without reading any content.
func Scan(ctx context.Context, configuration config.Configuration, logger *zap.Logger) (types.ScanResult, error) {
	logger = utils.LoggerOrNop(logger)
	walkResult, walkError := walker.Walk(ctx, configuration.RootPath(), policy.New(configuration))
	if walkError != nil {
		return types.ScanResult{}, fmt.Errorf("scan %s: %w", configuration.RootPath(), walkError)
	}
	for _, warning := range walkResult.Warnings {
		logger.Warn(scanWarningMessage, zap.String(logFieldRoot, configuration.RootPath()), zap.String(logFieldWarning, warning))
	}
	files := walkResult.Files
	if files == nil {
		files = []string{}
	}
	return types.ScanResult{
		RootName:  configuration.RootName(),
		TreeText:  output.RenderTree(configuration.RootName(), walkResult.TreeLines),
		TreeLines: walkResult.TreeLines,
		Files:     files,
		Warnings:  walkResult.Warnings,
	}, nil
}

// Render scans the configured root and writes the merged document to writer.
func Render(ctx context.Context, configuration config.Configuration, writer io.Writer, logger *zap.Logger) (output.DocumentStats, error) {
	logger = utils.LoggerOrNop(logger)
	scanResult, scanError := Scan(ctx, configuration, logger)
	if scanError != nil {
		return output.DocumentStats{}, scanError
	}

	rootPath := configuration.RootPath()
	reader := output.FileReaderFunc(func(relativePath string) (string, error) {
		return readFileContent(filepath.Join(rootPath, filepath.FromSlash(relativePath)))
	})
	stats, writeError := output.WriteDocument(writer, output.Document{
		RootName:  scanResult.RootName,
		TreeLines: scanResult.TreeLines,
		Files:     scanResult.Files,
	}, reader)
	for _, relativePath := range stats.FailedPaths() {
		logger.Warn(unreadableFileMessage, zap.String(logFieldPath, relativePath), zap.String(logFieldReason, stats.FailedFiles[relativePath]))
	}
	return stats, writeError
}

// RenderText renders the merged document into a string.
func RenderText(ctx context.Context, configuration config.Configuration, logger *zap.Logger) (string, output.DocumentStats, error) {
	var builder strings.Builder
	stats, renderError := Render(ctx, configuration, &builder, logger)
	if renderError != nil {
		return "", stats, renderError
	}
	return builder.String(), stats, nil
}

// readFileContent reads one file fully and decodes it permissively.
func readFileContent(absolutePath string) (string, error) {
	info, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", statError
	}
	if info.IsDir() {
		return "", fmt.Errorf(readDirectoryErrorFormat, absolutePath)
	}
	// #nosec G304 -- the path is produced by traversal of the configured root or validated by ReadGuarded.
	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil {
		return "", readError
	}
	return utils.DecodePermissive(fileBytes), nil
}
