// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/code4lm/internal/commands"
	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/services/clipboard"
	"github.com/temirov/code4lm/internal/tokenizer"
	"github.com/temirov/code4lm/internal/utils"
)

const (
	configFlagName       = "config"
	verboseFlagName      = "verbose"
	pathFlagName         = "path"
	outputFlagName       = "output"
	extensionsFlagName   = "exts"
	excludeFlagName      = "exclude"
	excludeFilesFlagName = "exclude-files"
	noGitignoreFlagName  = "no-gitignore"
	dryRunFlagName       = "dry-run"
	copyFlagName         = "copy"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	formatFlagName       = "format"
	addressFlagName      = "address"
	globalFlagName       = "global"
	forceFlagName        = "force"

	rootUse              = "code4lm"
	rootShortDescription = "merge project source files into a single document for language models"
	rootLongDescription  = `code4lm walks a project directory, selects files by extension or exact name,
skips excluded directories, excluded files and .gitignore matches, and writes
a directory tree followed by every selected file into one text artifact.
Running code4lm without a subcommand performs the merge. Use --dry-run to see
what would be merged without writing anything.`
	rootUsageExample = `  # Merge the current directory into all_code.txt
  code4lm

  # Merge only Go and Markdown files of another project
  code4lm --path ../service --exts .go,.md --output service.txt

  # Show what would be merged
  code4lm --dry-run --exclude testdata`
	versionTemplate = "code4lm version: {{.Version}}\n"

	configFlagDescription       = "configuration file to use instead of ./config.yaml"
	verboseFlagDescription      = "enable debug logging"
	pathFlagDescription         = "root path of the project to process"
	outputFlagDescription       = "path of the merged output file"
	extensionsFlagDescription   = "comma-separated extensions or exact file names to include"
	excludeFlagDescription      = "comma-separated directory names to exclude in addition to the defaults"
	excludeFilesFlagDescription = "comma-separated exact file names to exclude"
	noGitignoreFlagDescription  = "do not apply the project's .gitignore"
	dryRunFlagDescription       = "list the files that would be merged without writing the output file"
	copyFlagDescription         = "copy the merged document to the clipboard"
	tokensFlagDescription       = "count tokens of the merged document"
	modelFlagDescription        = "tokenizer model used for token counting"

	workingDirectoryErrorFormat  = "unable to determine working directory: %w"
	loadConfigurationErrorFormat = "load configuration: %w"

	logFieldOutput         = "output"
	logFieldGitignore      = "gitignore"
	logFieldLine           = "line"
	logFieldPattern        = "pattern"
	logFieldReason         = "reason"
	logFieldError          = "error"
	mergeCompleteLog       = "merge complete"
	copyFailedLog          = "clipboard copy failed"
	copiedLog              = "merged document copied to clipboard"
	tokenCountFailedLog    = "token counting failed"
	gitignoreUnreadableLog = "gitignore unreadable, continuing without patterns"
	gitignoreSkippedLog    = "skipping malformed gitignore pattern"
)

// dependencies holds collaborators that tests replace.
type dependencies struct {
	logger           *zap.Logger
	copier           clipboard.Copier
	newCounter       func(tokenizer.Config) (tokenizer.Counter, string, error)
	workingDirectory string
}

func defaultDependencies() dependencies {
	return dependencies{
		copier:     clipboard.NewService(),
		newCounter: tokenizer.NewCounter,
	}
}

// application is the state shared by every command of one invocation.
type application struct {
	dependencies
	configPath string
	verbose    bool
	settings   config.ApplicationConfiguration
}

// Execute runs the code4lm application.
func Execute() error {
	return createRootCommand(defaultDependencies()).Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	app := &application{dependencies: deps}
	var options mergeOptions

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Version:       utils.GetApplicationVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare()
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runMerge(command.Context(), command.OutOrStdout(), options.resolve(command, app.settings.Merge))
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&app.verbose, verboseFlagName, false, verboseFlagDescription)

	flagSet := rootCommand.Flags()
	addSelectionFlags(flagSet, &options.selection, true)
	flagSet.StringVar(&options.output, outputFlagName, "", outputFlagDescription)
	flagSet.BoolVar(&options.dryRun, dryRunFlagName, false, dryRunFlagDescription)
	flagSet.BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
	flagSet.BoolVar(&options.countTokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, "", modelFlagDescription)

	rootCommand.AddCommand(
		createScanCommand(app),
		createFetchCommand(app),
		createMCPCommand(app),
		createInitCommand(app),
	)
	return rootCommand
}

// prepare resolves the working directory, the logger and the configuration files.
func (app *application) prepare() error {
	if app.workingDirectory == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
		}
		app.workingDirectory = workingDirectory
	}
	if app.logger == nil {
		logger, loggerError := utils.NewApplicationLogger(app.verbose)
		if loggerError != nil {
			return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
		}
		app.logger = logger
	}
	settings, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.workingDirectory,
		ExplicitFilePath: app.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationErrorFormat, loadError)
	}
	app.settings = settings
	return nil
}

// buildConfiguration turns resolved selection settings into a scan configuration and reports gitignore problems.
func (app *application) buildConfiguration(selection resolvedSelection, outputTarget string) (config.Configuration, error) {
	configuration, report, buildError := config.Build(config.BuildOptions{
		RootPath:               app.resolvePath(selection.rootPath),
		OutputTarget:           app.resolveOptionalPath(outputTarget),
		Extensions:             selection.extensions,
		ExcludedDirectoryNames: selection.excludedDirectoryNames,
		ExcludedFileNames:      selection.excludedFileNames,
		UseGitignore:           selection.useGitignore,
	})
	if buildError != nil {
		return config.Configuration{}, buildError
	}
	if report.ReadError != nil {
		app.logger.Warn(gitignoreUnreadableLog, zap.String(logFieldGitignore, report.Path), zap.String(logFieldError, report.ReadError.Error()))
	}
	for _, skipped := range report.Skipped {
		app.logger.Warn(gitignoreSkippedLog,
			zap.String(logFieldGitignore, report.Path),
			zap.Int(logFieldLine, skipped.Number),
			zap.String(logFieldPattern, skipped.Text),
			zap.String(logFieldReason, skipped.Reason),
		)
	}
	return configuration, nil
}

// runMerge performs the default command: discovery, rendering, artifact write and optional extras.
func (app *application) runMerge(ctx context.Context, stdout io.Writer, options resolvedMerge) error {
	if ctx == nil {
		ctx = context.Background()
	}
	configuration, buildError := app.buildConfiguration(options.selection, options.output)
	if buildError != nil {
		return buildError
	}

	if options.dryRun {
		scanResult, scanError := commands.Scan(ctx, configuration, app.logger)
		if scanError != nil {
			return scanError
		}
		return output.WriteScanReport(stdout, output.ScanReport{
			Scan:                   scanResult,
			RootPath:               configuration.RootPath(),
			Extensions:             configuration.Extensions(),
			ExcludedDirectoryNames: configuration.ExcludedDirectoryNames(),
			ExcludedFileNames:      configuration.ExcludedFileNames(),
		})
	}

	document, stats, renderError := commands.RenderText(ctx, configuration, app.logger)
	if renderError != nil {
		return renderError
	}
	if writeError := commands.WriteArtifact(configuration.OutputTarget(), document); writeError != nil {
		return writeError
	}

	if options.copyToClipboard {
		if copyError := app.copier.Copy(document); copyError != nil {
			app.logger.Warn(copyFailedLog, zap.String(logFieldError, copyError.Error()))
		} else {
			app.logger.Info(copiedLog)
		}
	}

	tokenCount, model := 0, ""
	if options.countTokens {
		counted, countError := app.countTokens(document, options.model)
		if countError != nil {
			app.logger.Warn(tokenCountFailedLog, zap.String(logFieldError, countError.Error()))
		}
		tokenCount, model = counted.Tokens, counted.Model
	}

	app.logger.Info(mergeCompleteLog, zap.String(logFieldOutput, configuration.OutputTarget()))
	_, printError := fmt.Fprintln(stdout, output.FormatSummaryLine(stats, tokenCount, model))
	return printError
}

func (app *application) countTokens(document string, model string) (tokenizer.CountResult, error) {
	counter, resolvedModel, counterError := app.newCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return tokenizer.CountResult{}, counterError
	}
	result, countError := tokenizer.CountDocument(counter, document)
	if countError != nil {
		return tokenizer.CountResult{}, countError
	}
	result.Model = resolvedModel
	return result, nil
}
