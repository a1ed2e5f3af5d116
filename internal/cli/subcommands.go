package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/code4lm/internal/commands"
	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/types"
)

const (
	scanUse              = types.CommandScan + " [path]"
	scanShortDescription = "print the tree and the files that would be merged"
	scanLongDescription  = `Discover the files a merge would include without reading their content.
The root defaults to --path from the configuration or the current directory.`
	fetchUse              = types.CommandFetch + " <paths...>"
	fetchShortDescription = "print the contents of explicit files relative to the project root"
	fetchLongDescription  = `Print the concatenated contents of the given relative paths.
Paths that resolve outside the project root are denied and replaced by a marker.`
	initUse              = types.CommandInit
	initShortDescription = "write the default configuration file"

	formatFlagDescription = "output format: raw or json"
	globalFlagDescription = "write the configuration to ~/.code4lm instead of the working directory"
	forceFlagDescription  = "overwrite an existing configuration file"

	invalidFormatMessage       = "invalid format value %q"
	configurationWrittenFormat = "Configuration written to %s\n"
	fileListHeading            = "Files:"
	fileListLineFormat         = "  %s\n"
	fetchDeniedWarningLog      = "denied paths outside the project root"
	logFieldCount              = "count"
)

func validateFormat(format string) error {
	switch format {
	case types.FormatRaw, types.FormatJSON:
		return nil
	default:
		return fmt.Errorf(invalidFormatMessage, format)
	}
}

func writeJSON(writer io.Writer, payload interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(payload)
}

// createScanCommand returns the scan subcommand.
func createScanCommand(app *application) *cobra.Command {
	var options selectionOptions
	format := types.FormatRaw

	scanCommand := &cobra.Command{
		Use:   scanUse,
		Short: scanShortDescription,
		Long:  scanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if formatError := validateFormat(format); formatError != nil {
				return formatError
			}
			selection := options.resolve(command.Flags(), app.settings.Merge)
			if len(arguments) == 1 {
				selection.rootPath = arguments[0]
			}
			configuration, buildError := app.buildConfiguration(selection, "")
			if buildError != nil {
				return buildError
			}
			scanResult, scanError := commands.Scan(command.Context(), configuration, app.logger)
			if scanError != nil {
				return scanError
			}
			return writeScanResult(command.OutOrStdout(), scanResult, format)
		},
	}
	addSelectionFlags(scanCommand.Flags(), &options, true)
	scanCommand.Flags().StringVar(&format, formatFlagName, format, formatFlagDescription)
	return scanCommand
}

func writeScanResult(writer io.Writer, scanResult types.ScanResult, format string) error {
	if format == types.FormatJSON {
		return writeJSON(writer, scanResult)
	}
	if writeError := output.WriteTree(writer, scanResult.RootName, scanResult.TreeLines); writeError != nil {
		return writeError
	}
	if _, writeError := fmt.Fprintf(writer, "\n%s\n", fileListHeading); writeError != nil {
		return writeError
	}
	for _, relativePath := range scanResult.Files {
		if _, writeError := fmt.Fprintf(writer, fileListLineFormat, relativePath); writeError != nil {
			return writeError
		}
	}
	return nil
}

// createFetchCommand returns the fetch subcommand.
func createFetchCommand(app *application) *cobra.Command {
	rootPath := config.DefaultRootPath()
	format := types.FormatRaw

	fetchCommand := &cobra.Command{
		Use:   fetchUse,
		Short: fetchShortDescription,
		Long:  fetchLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if formatError := validateFormat(format); formatError != nil {
				return formatError
			}
			if !command.Flags().Changed(pathFlagName) && app.settings.Merge.Path != "" {
				rootPath = app.settings.Merge.Path
			}
			result := commands.Fetch(app.resolvePath(rootPath), arguments, app.logger)
			if len(result.Denied) > 0 {
				app.logger.Warn(fetchDeniedWarningLog, zap.Int(logFieldCount, len(result.Denied)))
			}
			if format == types.FormatJSON {
				return writeJSON(command.OutOrStdout(), result)
			}
			_, writeError := io.WriteString(command.OutOrStdout(), result.Text)
			return writeError
		},
	}
	fetchCommand.Flags().StringVar(&rootPath, pathFlagName, rootPath, pathFlagDescription)
	fetchCommand.Flags().StringVar(&format, formatFlagName, format, formatFlagDescription)
	return fetchCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, writtenPath)
			return printError
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
