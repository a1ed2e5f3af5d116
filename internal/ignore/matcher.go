// Package ignore evaluates slash relative paths against gitignore rules read from a project root.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	commentPrefix   = "#"
	negationPrefix  = "!"
	escapedPrefix   = "\\"
	directorySuffix = "/"
	segmentDivider  = "/"

	skippedReasonFormat = "malformed pattern segment %q: %v"
)

// Matcher reports whether a relative path is ignored.
// Directory paths carry a trailing slash, as in "build/".
type Matcher interface {
	Matches(relativePath string) bool
}

// SkippedLine records a gitignore line that could not be compiled.
type SkippedLine struct {
	Number int
	Text   string
	Reason string
}

type passThroughMatcher struct{}

func (passThroughMatcher) Matches(string) bool { return false }

// Disabled returns a Matcher that never ignores anything.
func Disabled() Matcher {
	return passThroughMatcher{}
}

type patternMatcher struct {
	matcher gitignore.Matcher
}

// Matches applies the compiled patterns with gitignore precedence: the last matching pattern wins.
func (matcher patternMatcher) Matches(relativePath string) bool {
	normalizedPath := strings.TrimPrefix(filepath.ToSlash(relativePath), "./")
	isDirectory := strings.HasSuffix(normalizedPath, directorySuffix)
	normalizedPath = strings.Trim(normalizedPath, directorySuffix)
	if normalizedPath == "" || normalizedPath == "." {
		return false
	}
	return matcher.matcher.Match(strings.Split(normalizedPath, segmentDivider), isDirectory)
}

// Compile builds a Matcher from gitignore lines. Blank lines and comments are dropped,
// lines with malformed globs are skipped individually and reported.
// When no usable pattern remains the pass-through matcher is returned.
func Compile(lines []string) (Matcher, []SkippedLine) {
	var patterns []gitignore.Pattern
	var skipped []SkippedLine
	for index, rawLine := range lines {
		line := strings.TrimSuffix(rawLine, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		if validationError := validatePattern(line); validationError != nil {
			skipped = append(skipped, SkippedLine{Number: index + 1, Text: line, Reason: validationError.Error()})
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return Disabled(), skipped
	}
	return patternMatcher{matcher: gitignore.NewMatcher(patterns)}, skipped
}

// validatePattern checks every glob segment of a gitignore line.
func validatePattern(line string) error {
	body := strings.TrimPrefix(line, negationPrefix)
	body = strings.TrimPrefix(body, escapedPrefix)
	body = strings.TrimRight(body, " ")
	body = strings.TrimSuffix(body, directorySuffix)
	if body == "" {
		return fmt.Errorf("empty pattern")
	}
	for _, segment := range strings.Split(body, segmentDivider) {
		if segment == "" || segment == "**" {
			continue
		}
		if _, matchError := filepath.Match(segment, ""); matchError != nil {
			return fmt.Errorf(skippedReasonFormat, segment, matchError)
		}
	}
	return nil
}
