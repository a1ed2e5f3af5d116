package output

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatSummaryLine returns the one-line summary of a rendered document.
func FormatSummaryLine(stats DocumentStats, tokenCount int, model string) string {
	label := "files"
	if stats.Files == 1 {
		label = "file"
	}
	extra := ""
	if stats.Failed > 0 {
		extra = fmt.Sprintf(", %d unreadable", stats.Failed)
	}
	if tokenCount > 0 {
		extra += fmt.Sprintf(", %s tokens", humanize.Comma(int64(tokenCount)))
	}
	modelSuffix := ""
	if model != "" && tokenCount > 0 {
		modelSuffix = fmt.Sprintf(" (model: %s)", model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", stats.Files, label, humanize.Bytes(uint64(stats.Bytes)), extra, modelSuffix)
}
