// Package output renders tree lines, merged documents and dry-run reports.
package output

import (
	"io"
	"strings"
)

const (
	lineBreak           = "\n"
	directoryNameSuffix = "/"
)

// WriteTree writes the root name followed by one tree line per row.
func WriteTree(writer io.Writer, rootName string, lines []string) error {
	_, writeError := io.WriteString(writer, RenderTree(rootName, lines))
	return writeError
}

// RenderTree returns the root name with a trailing slash and the tree lines, each terminated by a newline.
func RenderTree(rootName string, lines []string) string {
	var builder strings.Builder
	builder.WriteString(rootName + directoryNameSuffix + lineBreak)
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString(lineBreak)
	}
	return builder.String()
}
