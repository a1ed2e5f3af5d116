// Package types defines every cross-package data structure used by code4lm.
package types

const (
	CommandScan  = "scan"
	CommandFetch = "fetch"
	CommandMCP   = "mcp"
	CommandInit  = "init"

	// CommandRender names the tool-server operation returning the merged document.
	CommandRender = "render"

	FormatRaw  = "raw"
	FormatJSON = "json"

	directorySuffix = "/"
)

// PathCandidate is a filesystem entry encountered during traversal.
type PathCandidate struct {
	AbsolutePath string
	// RelativePath is relative to the configured root and always uses forward slashes.
	RelativePath string
	IsDirectory  bool
	Name         string
}

// MatchPath returns the relative path in gitignore form: directories carry a trailing slash.
func (candidate PathCandidate) MatchPath() string {
	if candidate.IsDirectory {
		return candidate.RelativePath + directorySuffix
	}
	return candidate.RelativePath
}

// ScanResult is the outcome of a discovery pass. No file content is read to produce it.
type ScanResult struct {
	RootName  string   `json:"root"`
	TreeText  string   `json:"tree"`
	TreeLines []string `json:"-"`
	Files     []string `json:"files"`
	Warnings  []string `json:"warnings,omitempty"`
}

// FetchResult is the outcome of a guarded retrieval of explicitly requested files.
type FetchResult struct {
	Text     string   `json:"output"`
	Files    []string `json:"files"`
	Denied   []string `json:"denied,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
