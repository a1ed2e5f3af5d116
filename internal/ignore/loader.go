package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/code4lm/internal/utils"
)

// LoadReport describes how the gitignore layer was initialized.
type LoadReport struct {
	// Path is the gitignore file consulted, empty when the layer is disabled.
	Path    string
	Found   bool
	Skipped []SkippedLine
	// ReadError is set when the file exists but could not be read; the layer then passes everything through.
	ReadError error
}

// Load compiles the .gitignore located directly in rootPath.
// A disabled layer or a missing file yields the pass-through matcher without error.
// An unreadable file degrades to the pass-through matcher and is recorded in the report.
func Load(rootPath string, enabled bool) (Matcher, LoadReport) {
	if !enabled {
		return Disabled(), LoadReport{}
	}
	gitignorePath := filepath.Join(rootPath, utils.GitIgnoreFileName)
	report := LoadReport{Path: gitignorePath}

	lines, readError := readLines(gitignorePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Disabled(), report
		}
		report.Found = true
		report.ReadError = fmt.Errorf("reading %s: %w", gitignorePath, readError)
		return Disabled(), report
	}
	report.Found = true

	matcher, skipped := Compile(lines)
	report.Skipped = skipped
	return matcher, report
}

// #nosec G304
func readLines(path string) ([]string, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()

	info, statError := fileHandle.Stat()
	if statError != nil {
		return nil, statError
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	var lines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return lines, nil
}
