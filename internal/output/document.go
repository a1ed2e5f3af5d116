package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	// TreeHeaderMarker opens every merged document.
	TreeHeaderMarker = "# ===== Project Directory Tree ====="
	// SectionBreakMarker separates the tree from the file blocks.
	SectionBreakMarker = "# ==================================="

	fileMarkerFormat       = "# ===== File Path: %s ====="
	unreadableMarkerFormat = "[Could not read file: %s]"
)

// Document is the discovery data a merged document is rendered from.
type Document struct {
	RootName  string
	TreeLines []string
	// Files are relative slash paths in output order.
	Files []string
}

// FileReader returns the decoded content of a relative path.
type FileReader interface {
	ReadFile(relativePath string) (string, error)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(relativePath string) (string, error)

// ReadFile implements FileReader.
func (function FileReaderFunc) ReadFile(relativePath string) (string, error) {
	return function(relativePath)
}

// DocumentStats summarizes one rendered document.
type DocumentStats struct {
	Files  int
	Bytes  int64
	Failed int
	// IncludedFiles lists the relative paths whose content was written, in output order.
	IncludedFiles []string
	// FailedFiles maps relative paths that could not be read to the failure reason.
	FailedFiles map[string]string
}

// FileMarker returns the marker line that precedes a file block.
func FileMarker(relativePath string) string {
	return fmt.Sprintf(fileMarkerFormat, relativePath)
}

// UnreadableMarker returns the placeholder written instead of unreadable content.
func UnreadableMarker(reason error) string {
	return fmt.Sprintf(unreadableMarkerFormat, reason)
}

// FileBlock returns a file's block: a blank line, its marker, a blank line and the content.
// afterLineBreak reports whether the text written before the block ends with a line break;
// when it does not, the line is terminated first so the blank line survives.
func FileBlock(relativePath string, content string, afterLineBreak bool) string {
	prefix := lineBreak
	if !afterLineBreak {
		prefix += lineBreak
	}
	return prefix + FileMarker(relativePath) + lineBreak + lineBreak + content
}

// EndsWithLineBreak reports whether a block holding content leaves the output at the start of a line.
// Empty content counts: the block then ends with the blank line after its marker.
func EndsWithLineBreak(content string) bool {
	return content == "" || strings.HasSuffix(content, lineBreak)
}

// FailedPaths returns the keys of FailedFiles in ascending order.
func (stats DocumentStats) FailedPaths() []string {
	paths := make([]string, 0, len(stats.FailedFiles))
	for relativePath := range stats.FailedFiles {
		paths = append(paths, relativePath)
	}
	sort.Strings(paths)
	return paths
}

// WriteDocument renders the header, the tree and every file block in order.
// Unreadable files are replaced by a marker and counted; only writer errors are returned.
func WriteDocument(writer io.Writer, document Document, reader FileReader) (DocumentStats, error) {
	sink := &stickyWriter{writer: writer}
	stats := DocumentStats{}

	sink.write(TreeHeaderMarker + lineBreak + lineBreak)
	sink.write(RenderTree(document.RootName, document.TreeLines))
	sink.write(lineBreak + SectionBreakMarker + lineBreak)

	afterLineBreak := true
	for _, relativePath := range document.Files {
		if sink.err != nil {
			break
		}
		content, readError := reader.ReadFile(relativePath)
		if readError != nil {
			if stats.FailedFiles == nil {
				stats.FailedFiles = map[string]string{}
			}
			stats.FailedFiles[relativePath] = readError.Error()
			stats.Failed++
			content = UnreadableMarker(readError)
		} else {
			stats.Files++
			stats.IncludedFiles = append(stats.IncludedFiles, relativePath)
			stats.Bytes += int64(len(content))
		}
		sink.write(FileBlock(relativePath, content, afterLineBreak))
		afterLineBreak = EndsWithLineBreak(content)
	}

	if sink.err != nil {
		return stats, fmt.Errorf("write merged document: %w", sink.err)
	}
	return stats, nil
}

// stickyWriter keeps the first write error and ignores later writes.
type stickyWriter struct {
	writer io.Writer
	err    error
}

func (sink *stickyWriter) write(text string) {
	if sink.err != nil {
		return
	}
	_, sink.err = io.WriteString(sink.writer, text)
}
