package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/code4lm/internal/types"
)

const (
	reportDryRunNotice     = "Dry run: no output file will be written."
	reportProjectLabel     = "Project:"
	reportExtensionsLabel  = "Target extensions:"
	reportDirectoriesLabel = "Excluded directories:"
	reportFilesLabel       = "Excluded files:"
	reportTreeHeading      = "Directory tree"
	reportFileListHeading  = "The following files would be merged:"
	reportNoFilesLine      = "   (No files found matching the criteria)"
	reportFileLineFormat   = "   - %s\n"
	reportWarningFormat    = "warning: %s\n"
	reportListSeparator    = ", "
	reportEmptyList        = "(none)"
)

// ScanReport is the dry-run view of a scan together with the settings that produced it.
type ScanReport struct {
	Scan                   types.ScanResult
	RootPath               string
	Extensions             []string
	ExcludedDirectoryNames []string
	ExcludedFileNames      []string
}

// WriteScanReport prints the dry-run report with colored headings.
func WriteScanReport(writer io.Writer, report ScanReport) error {
	heading := color.New(color.FgCyan, color.Bold)
	notice := color.New(color.FgYellow)
	sink := &stickyWriter{writer: writer}

	sink.write(notice.Sprint(reportDryRunNotice) + lineBreak)
	sink.write(fmt.Sprintf("%s %s\n", heading.Sprint(reportProjectLabel), report.RootPath))
	sink.write(fmt.Sprintf("%s %s\n", heading.Sprint(reportExtensionsLabel), joinOrNone(report.Extensions)))
	sink.write(fmt.Sprintf("%s %s\n", heading.Sprint(reportDirectoriesLabel), joinOrNone(report.ExcludedDirectoryNames)))
	if len(report.ExcludedFileNames) > 0 {
		sink.write(fmt.Sprintf("%s %s\n", heading.Sprint(reportFilesLabel), joinOrNone(report.ExcludedFileNames)))
	}

	sink.write(lineBreak + heading.Sprint(reportTreeHeading) + lineBreak)
	sink.write(RenderTree(report.Scan.RootName, report.Scan.TreeLines))

	sink.write(lineBreak + heading.Sprint(reportFileListHeading) + lineBreak)
	if len(report.Scan.Files) == 0 {
		sink.write(reportNoFilesLine + lineBreak)
	}
	for _, relativePath := range report.Scan.Files {
		sink.write(fmt.Sprintf(reportFileLineFormat, relativePath))
	}
	for _, warning := range report.Scan.Warnings {
		sink.write(notice.Sprintf(reportWarningFormat, warning))
	}
	return sink.err
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return reportEmptyList
	}
	return strings.Join(values, reportListSeparator)
}
