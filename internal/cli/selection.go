package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/utils"
)

// selectionOptions captures the flags that decide which files are admitted.
type selectionOptions struct {
	rootPath               string
	extensions             []string
	excludedDirectoryNames []string
	excludedFileNames      []string
	noGitignore            bool
}

// resolvedSelection is a selection after defaults, configuration files and flags were layered.
type resolvedSelection struct {
	rootPath               string
	extensions             []string
	excludedDirectoryNames []string
	excludedFileNames      []string
	useGitignore           bool
}

// mergeOptions captures the flags of the default merge command.
type mergeOptions struct {
	selection       selectionOptions
	output          string
	dryRun          bool
	copyToClipboard bool
	countTokens     bool
	model           string
}

type resolvedMerge struct {
	selection       resolvedSelection
	output          string
	dryRun          bool
	copyToClipboard bool
	countTokens     bool
	model           string
}

// addSelectionFlags registers the selection flags. The path flag is omitted for commands taking the root as an argument.
func addSelectionFlags(flagSet *pflag.FlagSet, options *selectionOptions, includePath bool) {
	if includePath {
		flagSet.StringVar(&options.rootPath, pathFlagName, config.DefaultRootPath(), pathFlagDescription)
	}
	flagSet.StringSliceVar(&options.extensions, extensionsFlagName, nil, extensionsFlagDescription)
	flagSet.StringSliceVar(&options.excludedDirectoryNames, excludeFlagName, nil, excludeFlagDescription)
	flagSet.StringSliceVar(&options.excludedFileNames, excludeFilesFlagName, nil, excludeFilesFlagDescription)
	flagSet.BoolVar(&options.noGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
}

// resolve layers flags over configuration file values over built-in defaults.
func (options selectionOptions) resolve(flagSet *pflag.FlagSet, defaults config.MergeConfiguration) resolvedSelection {
	resolved := resolvedSelection{
		rootPath:               firstNonEmpty(defaults.Path, config.DefaultRootPath()),
		extensions:             defaults.Extensions,
		excludedDirectoryNames: defaults.Exclude,
		excludedFileNames:      defaults.ExcludeFiles,
		useGitignore:           boolOrDefault(defaults.UseGitignore, true),
	}
	if flagSet.Changed(pathFlagName) {
		resolved.rootPath = options.rootPath
	}
	if flagSet.Changed(extensionsFlagName) {
		resolved.extensions = append([]string{}, options.extensions...)
	}
	if flagSet.Changed(excludeFlagName) {
		resolved.excludedDirectoryNames = utils.DeduplicateStrings(append(append([]string{}, resolved.excludedDirectoryNames...), options.excludedDirectoryNames...))
	}
	if flagSet.Changed(excludeFilesFlagName) {
		resolved.excludedFileNames = utils.DeduplicateStrings(append(append([]string{}, resolved.excludedFileNames...), options.excludedFileNames...))
	}
	if flagSet.Changed(noGitignoreFlagName) {
		resolved.useGitignore = !options.noGitignore
	}
	return resolved
}

func (options mergeOptions) resolve(command *cobra.Command, defaults config.MergeConfiguration) resolvedMerge {
	flagSet := command.Flags()
	resolved := resolvedMerge{
		selection:       options.selection.resolve(flagSet, defaults),
		output:          firstNonEmpty(defaults.Output, config.DefaultOutputTarget()),
		dryRun:          boolOrDefault(defaults.DryRun, false),
		copyToClipboard: boolOrDefault(defaults.Copy, false),
		countTokens:     boolOrDefault(defaults.Tokens.Enabled, false),
		model:           firstNonEmpty(defaults.Tokens.Model, config.DefaultTokenModel()),
	}
	if flagSet.Changed(outputFlagName) {
		resolved.output = options.output
	}
	if flagSet.Changed(dryRunFlagName) {
		resolved.dryRun = options.dryRun
	}
	if flagSet.Changed(copyFlagName) {
		resolved.copyToClipboard = options.copyToClipboard
	}
	if flagSet.Changed(tokensFlagName) {
		resolved.countTokens = options.countTokens
	}
	if flagSet.Changed(modelFlagName) {
		resolved.model = options.model
	}
	return resolved
}

// resolvePath anchors a relative path at the working directory.
func (app *application) resolvePath(path string) string {
	if path == "" {
		path = config.DefaultRootPath()
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(app.workingDirectory, path)
}

func (app *application) resolveOptionalPath(path string) string {
	if path == "" {
		return ""
	}
	return app.resolvePath(path)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
