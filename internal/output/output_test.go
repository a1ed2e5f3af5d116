package output_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/code4lm/internal/output"
	"github.com/temirov/code4lm/internal/types"
)

func TestRenderTree(t *testing.T) {
	rendered := output.RenderTree("project", []string{"├── src/", "│   └── main.go", "└── README.md"})
	expected := "project/\n├── src/\n│   └── main.go\n└── README.md\n"
	if diff := cmp.Diff(expected, rendered); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "empty/\n", output.RenderTree("empty", nil))
	require.Equal(t, "/\n", output.RenderTree("", nil))
}

func TestWriteTree(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, output.WriteTree(&buffer, "project", []string{"└── main.go"}))
	require.Equal(t, "project/\n└── main.go\n", buffer.String())

	require.Error(t, output.WriteTree(&failingWriter{}, "project", nil))
}

func TestWriteDocument(t *testing.T) {
	contents := map[string]string{
		"README.md":   "# Title\r\n",
		"src/main.go": "package main\n",
	}
	reader := output.FileReaderFunc(func(relativePath string) (string, error) {
		content, found := contents[relativePath]
		if !found {
			return "", errors.New("permission denied")
		}
		return content, nil
	})
	document := output.Document{
		RootName:  "project",
		TreeLines: []string{"├── src/", "│   ├── gone.go", "│   └── main.go", "└── README.md"},
		Files:     []string{"README.md", "src/gone.go", "src/main.go"},
	}

	var buffer bytes.Buffer
	stats, err := output.WriteDocument(&buffer, document, reader)
	require.NoError(t, err)

	expected := "# ===== Project Directory Tree =====\n" +
		"\n" +
		"project/\n" +
		"├── src/\n" +
		"│   ├── gone.go\n" +
		"│   └── main.go\n" +
		"└── README.md\n" +
		"\n" +
		"# ===================================\n" +
		"\n# ===== File Path: README.md =====\n\n# Title\r\n" +
		"\n# ===== File Path: src/gone.go =====\n\n[Could not read file: permission denied]\n" +
		"\n# ===== File Path: src/main.go =====\n\npackage main\n"
	if diff := cmp.Diff(expected, buffer.String()); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 2, stats.Files)
	require.Equal(t, 1, stats.Failed)
	require.Equal(t, int64(len("# Title\r\n")+len("package main\n")), stats.Bytes)
	require.Equal(t, map[string]string{"src/gone.go": "permission denied"}, stats.FailedFiles)
	require.Equal(t, []string{"README.md", "src/main.go"}, stats.IncludedFiles)
}

func TestWriteDocumentSeparatesBlocks(t *testing.T) {
	testCases := []struct {
		name     string
		contents map[string]string
		expected string
	}{
		{
			name:     "content without trailing line break",
			contents: map[string]string{"a.py": "x = 1", "b.py": "y = 2\n"},
			expected: "\n# ===== File Path: a.py =====\n\nx = 1\n\n# ===== File Path: b.py =====\n\ny = 2\n",
		},
		{
			name:     "content with trailing line break",
			contents: map[string]string{"a.py": "x = 1\n", "b.py": "y = 2"},
			expected: "\n# ===== File Path: a.py =====\n\nx = 1\n\n# ===== File Path: b.py =====\n\ny = 2",
		},
		{
			name:     "empty content",
			contents: map[string]string{"a.py": "", "b.py": "y = 2"},
			expected: "\n# ===== File Path: a.py =====\n\n\n# ===== File Path: b.py =====\n\ny = 2",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			reader := output.FileReaderFunc(func(relativePath string) (string, error) {
				return testCase.contents[relativePath], nil
			})
			var buffer bytes.Buffer
			_, err := output.WriteDocument(&buffer, output.Document{RootName: "project", Files: []string{"a.py", "b.py"}}, reader)
			require.NoError(t, err)

			_, blocks, found := strings.Cut(buffer.String(), output.SectionBreakMarker+"\n")
			require.True(t, found)
			if diff := cmp.Diff(testCase.expected, blocks); diff != "" {
				t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFailedPathsSorted(t *testing.T) {
	stats := output.DocumentStats{FailedFiles: map[string]string{"c.go": "x", "a.go": "y", "b/d.go": "z"}}
	require.Equal(t, []string{"a.go", "b/d.go", "c.go"}, stats.FailedPaths())
	require.Empty(t, output.DocumentStats{}.FailedPaths())
}

type failingWriter struct {
	remaining int
}

func (writer *failingWriter) Write(data []byte) (int, error) {
	if writer.remaining <= 0 {
		return 0, errors.New("disk full")
	}
	writer.remaining--
	return len(data), nil
}

func TestWriteDocumentReturnsSinkErrors(t *testing.T) {
	reads := 0
	reader := output.FileReaderFunc(func(string) (string, error) {
		reads++
		return "content", nil
	})
	document := output.Document{RootName: "project", Files: []string{"a.go", "b.go"}}

	_, err := output.WriteDocument(&failingWriter{remaining: 3}, document, reader)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, 1, reads)
}

func TestFormatSummaryLine(t *testing.T) {
	testCases := []struct {
		name     string
		stats    output.DocumentStats
		tokens   int
		model    string
		expected string
	}{
		{name: "single file", stats: output.DocumentStats{Files: 1, Bytes: 12}, expected: "Summary: 1 file, 12 B"},
		{name: "tokens and model", stats: output.DocumentStats{Files: 3, Bytes: 2048}, tokens: 12345, model: "gpt-4o", expected: "Summary: 3 files, 2.0 kB, 12,345 tokens (model: gpt-4o)"},
		{name: "unreadable files", stats: output.DocumentStats{Files: 0, Failed: 2}, expected: "Summary: 0 files, 0 B, 2 unreadable"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, output.FormatSummaryLine(testCase.stats, testCase.tokens, testCase.model))
		})
	}
}

func TestWriteScanReport(t *testing.T) {
	var buffer bytes.Buffer
	err := output.WriteScanReport(&buffer, output.ScanReport{
		Scan: types.ScanResult{
			RootName:  "project",
			TreeLines: []string{"└── main.go"},
			Files:     []string{"main.go"},
			Warnings:  []string{"unreadable directory locked: permission denied"},
		},
		RootPath:               "/work/project",
		Extensions:             []string{".go"},
		ExcludedDirectoryNames: []string{".git", "node_modules"},
	})
	require.NoError(t, err)

	rendered := buffer.String()
	for _, fragment := range []string{
		"/work/project",
		".go",
		".git, node_modules",
		"project/\n└── main.go\n",
		"   - main.go\n",
		"unreadable directory locked",
	} {
		require.Contains(t, rendered, fragment)
	}
	require.False(t, strings.Contains(rendered, "Excluded files:"))
}

func TestWriteScanReportWithoutFiles(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, output.WriteScanReport(&buffer, output.ScanReport{Scan: types.ScanResult{RootName: "project"}}))
	require.Contains(t, buffer.String(), "(No files found matching the criteria)")
	require.Contains(t, buffer.String(), "(none)")
}
