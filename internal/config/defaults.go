package config

import "github.com/temirov/code4lm/internal/utils"

const (
	defaultRootPath     = "."
	defaultOutputTarget = "all_code.txt"
	defaultTokenModel   = "gpt-4o"
)

// DefaultRootPath returns the directory scanned when none is supplied.
func DefaultRootPath() string {
	return defaultRootPath
}

// DefaultOutputTarget returns the artifact file name used when none is supplied.
func DefaultOutputTarget() string {
	return defaultOutputTarget
}

// DefaultTokenModel returns the tokenizer model used for summaries.
func DefaultTokenModel() string {
	return defaultTokenModel
}

// DefaultExtensions returns the extension tokens used when the caller supplies none.
// Tokens are suffixes like ".py" or exact file names like "Dockerfile".
func DefaultExtensions() []string {
	return []string{
		".py",
		".js",
		".ts",
		".html",
		".css",
		".md",
		".go",
		".java",
		".cpp",
		".c",
		"Dockerfile",
		"docker-compose.yml",
		"README.md",
	}
}

// DefaultExcludedDirectoryNames returns the directory names that are always excluded.
// Caller-supplied names are added to this set, never substituted for it.
func DefaultExcludedDirectoryNames() []string {
	return []string{
		"venv",
		"node_modules",
		utils.GitDirectoryName,
		".idea",
		"dist",
		"build",
		"__pycache__",
	}
}
