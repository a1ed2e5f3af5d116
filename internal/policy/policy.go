// Package policy decides which traversal candidates are descended into and which files are admitted.
package policy

import (
	"strings"

	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/ignore"
	"github.com/temirov/code4lm/internal/types"
)

// Policy layers the explicit exclusions, the gitignore matcher, the output artifact and the extension allowlist.
type Policy struct {
	configuration      config.Configuration
	matcher            ignore.Matcher
	extensions         []string
	outputRelativePath string
	hasOutputPath      bool
}

// New builds a Policy from configuration.
func New(configuration config.Configuration) *Policy {
	outputRelativePath, hasOutputPath := configuration.OutputRelativePath()
	return &Policy{
		configuration:      configuration,
		matcher:            configuration.Matcher(),
		extensions:         configuration.Extensions(),
		outputRelativePath: outputRelativePath,
		hasOutputPath:      hasOutputPath,
	}
}

// ShouldDescend reports whether the walker may enter the directory candidate.
func (policy *Policy) ShouldDescend(candidate types.PathCandidate) bool {
	if policy.configuration.IsExcludedDirectoryName(candidate.Name) {
		return false
	}
	return !policy.matcher.Matches(candidate.MatchPath())
}

// ShouldInclude reports whether the file candidate belongs to the merged output.
func (policy *Policy) ShouldInclude(candidate types.PathCandidate) bool {
	if policy.configuration.IsExcludedFileName(candidate.Name) {
		return false
	}
	if policy.matcher.Matches(candidate.MatchPath()) {
		return false
	}
	if policy.hasOutputPath && candidate.RelativePath == policy.outputRelativePath {
		return false
	}
	return MatchesExtension(candidate.Name, policy.extensions)
}

// MatchesExtension reports whether name ends with, or equals, any of the tokens.
// Tokens are literal suffixes, so ".ts" also admits "app.module.ts" and "Dockerfile" admits "prod.Dockerfile".
func MatchesExtension(name string, tokens []string) bool {
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if name == token || strings.HasSuffix(name, token) {
			return true
		}
	}
	return false
}
