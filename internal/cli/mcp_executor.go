package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/temirov/code4lm/internal/commands"
	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/services/mcp"
	"github.com/temirov/code4lm/internal/types"
)

const (
	unreadableWarningFormat = "%s: %s"
	requestPathErrorFormat  = "request path %s: %w"
)

var errFetchPathsRequired = errors.New("paths must contain at least one relative path")

// selectionRequest is the JSON body accepted by the scan and render commands.
type selectionRequest struct {
	Path         string   `json:"path"`
	Extensions   []string `json:"extensions"`
	Exclude      []string `json:"exclude"`
	ExcludeFiles []string `json:"excludeFiles"`
	UseGitignore *bool    `json:"useGitignore"`
}

// fetchRequest is the JSON body accepted by the fetch command.
type fetchRequest struct {
	Path  string   `json:"path"`
	Paths []string `json:"paths"`
}

func (app *application) mcpTools(rootPath string) map[string]mcp.Tool {
	return map[string]mcp.Tool{
		types.CommandScan: mcp.ToolFunc(func(ctx context.Context, request mcp.Request) (mcp.Response, error) {
			return app.executeScanCommand(ctx, rootPath, request)
		}),
		types.CommandRender: mcp.ToolFunc(func(ctx context.Context, request mcp.Request) (mcp.Response, error) {
			return app.executeRenderCommand(ctx, rootPath, request)
		}),
		types.CommandFetch: mcp.ToolFunc(func(ctx context.Context, request mcp.Request) (mcp.Response, error) {
			return app.executeFetchCommand(rootPath, request)
		}),
	}
}

func decodePayload(payload json.RawMessage, target interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, target)
}

// resolveRequestPath anchors a request path at the server root and refuses paths that leave it.
func resolveRequestPath(rootPath string, requested string) (string, error) {
	if requested == "" {
		return rootPath, nil
	}
	resolvedPath, resolveError := commands.ResolveWithinRoot(rootPath, requested)
	switch {
	case resolveError == nil:
		return resolvedPath, nil
	case errors.Is(resolveError, commands.ErrPathOutsideRoot):
		return "", mcp.Fail(http.StatusForbidden, fmt.Errorf(requestPathErrorFormat, requested, resolveError))
	case errors.Is(resolveError, commands.ErrFileNotFound):
		return "", mcp.Fail(http.StatusNotFound, fmt.Errorf(requestPathErrorFormat, requested, resolveError))
	default:
		return "", mcp.Fail(http.StatusBadRequest, fmt.Errorf(requestPathErrorFormat, requested, resolveError))
	}
}

// requestConfiguration layers a request over the loaded configuration files.
func (app *application) requestConfiguration(rootPath string, payload json.RawMessage, commandName string) (config.Configuration, error) {
	var request selectionRequest
	if decodeError := decodePayload(payload, &request); decodeError != nil {
		return config.Configuration{}, mcp.Fail(http.StatusBadRequest, fmt.Errorf("decode %s request: %w", commandName, decodeError))
	}
	selectedRootPath, pathError := resolveRequestPath(rootPath, request.Path)
	if pathError != nil {
		return config.Configuration{}, pathError
	}
	defaults := app.settings.Merge
	selection := resolvedSelection{
		rootPath:               selectedRootPath,
		extensions:             defaults.Extensions,
		excludedDirectoryNames: append(append([]string{}, defaults.Exclude...), request.Exclude...),
		excludedFileNames:      append(append([]string{}, defaults.ExcludeFiles...), request.ExcludeFiles...),
		useGitignore:           boolOrDefault(defaults.UseGitignore, true),
	}
	if request.Extensions != nil {
		selection.extensions = request.Extensions
	}
	if request.UseGitignore != nil {
		selection.useGitignore = *request.UseGitignore
	}
	return app.buildConfiguration(selection, firstNonEmpty(defaults.Output, config.DefaultOutputTarget()))
}

func (app *application) executeScanCommand(ctx context.Context, rootPath string, request mcp.Request) (mcp.Response, error) {
	configuration, configurationError := app.requestConfiguration(rootPath, request.Body, types.CommandScan)
	if configurationError != nil {
		return mcp.Response{}, configurationError
	}
	scanResult, scanError := commands.RunInBackground(ctx, func(backgroundContext context.Context) (types.ScanResult, error) {
		return commands.Scan(backgroundContext, configuration, app.logger)
	})
	if scanError != nil {
		return mcp.Response{}, scanError
	}
	return mcp.Response{
		Output:   scanResult.TreeText,
		Format:   types.FormatRaw,
		Files:    scanResult.Files,
		Warnings: scanResult.Warnings,
	}, nil
}

type renderOutcome struct {
	text  string
	stats output.DocumentStats
}

func (app *application) executeRenderCommand(ctx context.Context, rootPath string, request mcp.Request) (mcp.Response, error) {
	configuration, configurationError := app.requestConfiguration(rootPath, request.Body, types.CommandRender)
	if configurationError != nil {
		return mcp.Response{}, configurationError
	}
	outcome, renderError := commands.RunInBackground(ctx, func(backgroundContext context.Context) (renderOutcome, error) {
		text, stats, err := commands.RenderText(backgroundContext, configuration, app.logger)
		return renderOutcome{text: text, stats: stats}, err
	})
	if renderError != nil {
		return mcp.Response{}, renderError
	}
	return mcp.Response{
		Output:   outcome.text,
		Format:   types.FormatRaw,
		Files:    outcome.stats.IncludedFiles,
		Warnings: failureWarnings(outcome.stats),
	}, nil
}

func (app *application) executeFetchCommand(rootPath string, request mcp.Request) (mcp.Response, error) {
	var payload fetchRequest
	if decodeError := decodePayload(request.Body, &payload); decodeError != nil {
		return mcp.Response{}, mcp.Fail(http.StatusBadRequest, fmt.Errorf("decode fetch request: %w", decodeError))
	}
	if len(payload.Paths) == 0 {
		return mcp.Response{}, mcp.Fail(http.StatusBadRequest, errFetchPathsRequired)
	}
	fetchRootPath, pathError := resolveRequestPath(rootPath, payload.Path)
	if pathError != nil {
		return mcp.Response{}, pathError
	}
	result := commands.Fetch(fetchRootPath, payload.Paths, app.logger)
	return mcp.Response{
		Output:   result.Text,
		Format:   types.FormatRaw,
		Files:    result.Files,
		Denied:   result.Denied,
		Warnings: result.Warnings,
	}, nil
}

func failureWarnings(stats output.DocumentStats) []string {
	if len(stats.FailedFiles) == 0 {
		return nil
	}
	warnings := make([]string, 0, len(stats.FailedFiles))
	for _, relativePath := range stats.FailedPaths() {
		warnings = append(warnings, fmt.Sprintf(unreadableWarningFormat, relativePath, stats.FailedFiles[relativePath]))
	}
	return warnings
}
