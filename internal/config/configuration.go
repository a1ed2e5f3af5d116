// Package config builds the immutable scan configuration and loads application configuration files.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/code4lm/internal/ignore"
	"github.com/temirov/code4lm/internal/utils"
)

const (
	errorAbsoluteRootFormat   = "resolving absolute path for %s: %w"
	errorAbsoluteOutputFormat = "resolving absolute path for output %s: %w"
)

// BuildOptions carries caller-supplied parameters for one invocation.
type BuildOptions struct {
	RootPath string
	// OutputTarget is the artifact path; relative values resolve against the working directory.
	OutputTarget string
	// Extensions nil selects DefaultExtensions; a non-nil empty slice selects nothing.
	Extensions []string
	// ExcludedDirectoryNames are added to DefaultExcludedDirectoryNames.
	ExcludedDirectoryNames []string
	ExcludedFileNames      []string
	UseGitignore           bool
}

// Configuration is the read-only value consulted by the exclusion policy and the walker.
type Configuration struct {
	rootPath               string
	outputTarget           string
	extensions             []string
	excludedDirectoryNames map[string]struct{}
	excludedFileNames      map[string]struct{}
	useGitignore           bool
	matcher                ignore.Matcher
}

// Build resolves options into a Configuration. The project's .gitignore is read once here.
// A missing or unreadable .gitignore never fails the build; the returned report describes it.
func Build(options BuildOptions) (Configuration, ignore.LoadReport, error) {
	rootPath := options.RootPath
	if rootPath == "" {
		rootPath = DefaultRootPath()
	}
	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return Configuration{}, ignore.LoadReport{}, fmt.Errorf(errorAbsoluteRootFormat, rootPath, absoluteError)
	}
	absoluteRootPath = filepath.Clean(absoluteRootPath)

	var absoluteOutputTarget string
	if options.OutputTarget != "" {
		resolvedOutput, outputError := filepath.Abs(options.OutputTarget)
		if outputError != nil {
			return Configuration{}, ignore.LoadReport{}, fmt.Errorf(errorAbsoluteOutputFormat, options.OutputTarget, outputError)
		}
		absoluteOutputTarget = filepath.Clean(resolvedOutput)
	}

	extensions := utils.SanitizeList(options.Extensions)
	if options.Extensions == nil {
		extensions = DefaultExtensions()
	}

	directoryNames := append(DefaultExcludedDirectoryNames(), utils.SanitizeList(options.ExcludedDirectoryNames)...)

	matcher, report := ignore.Load(absoluteRootPath, options.UseGitignore)

	return Configuration{
		rootPath:               absoluteRootPath,
		outputTarget:           absoluteOutputTarget,
		extensions:             extensions,
		excludedDirectoryNames: toSet(directoryNames),
		excludedFileNames:      toSet(utils.SanitizeList(options.ExcludedFileNames)),
		useGitignore:           options.UseGitignore,
		matcher:                matcher,
	}, report, nil
}

// RootPath returns the absolute, cleaned project root.
func (configuration Configuration) RootPath() string {
	return configuration.rootPath
}

// RootName returns the base name of the project root.
// The filesystem root has no base name and yields an empty string.
func (configuration Configuration) RootName() string {
	return strings.TrimSuffix(filepath.Base(configuration.rootPath), string(filepath.Separator))
}

// OutputTarget returns the absolute artifact path, or an empty string when none was configured.
func (configuration Configuration) OutputTarget() string {
	return configuration.outputTarget
}

// OutputRelativePath returns the artifact path relative to the root when the artifact lies inside it.
func (configuration Configuration) OutputRelativePath() (string, bool) {
	if configuration.outputTarget == "" || !utils.IsWithinDirectory(configuration.outputTarget, configuration.rootPath) {
		return "", false
	}
	relativePath, relativeError := utils.RelativeSlashPath(configuration.outputTarget, configuration.rootPath)
	if relativeError != nil || relativePath == "." {
		return "", false
	}
	return relativePath, true
}

// Extensions returns a copy of the ordered extension tokens.
func (configuration Configuration) Extensions() []string {
	return append([]string(nil), configuration.extensions...)
}

// IsExcludedDirectoryName reports whether name is an excluded directory basename.
func (configuration Configuration) IsExcludedDirectoryName(name string) bool {
	_, excluded := configuration.excludedDirectoryNames[name]
	return excluded
}

// IsExcludedFileName reports whether name is an excluded file basename.
func (configuration Configuration) IsExcludedFileName(name string) bool {
	_, excluded := configuration.excludedFileNames[name]
	return excluded
}

// ExcludedDirectoryNames returns the excluded directory names in sorted order.
func (configuration Configuration) ExcludedDirectoryNames() []string {
	return sortedKeys(configuration.excludedDirectoryNames)
}

// ExcludedFileNames returns the excluded file names in sorted order.
func (configuration Configuration) ExcludedFileNames() []string {
	return sortedKeys(configuration.excludedFileNames)
}

// UseGitignore reports whether the gitignore layer was requested.
func (configuration Configuration) UseGitignore() bool {
	return configuration.useGitignore
}

// Matcher returns the gitignore matcher; it is never nil.
func (configuration Configuration) Matcher() ignore.Matcher {
	if configuration.matcher == nil {
		return ignore.Disabled()
	}
	return configuration.matcher
}
