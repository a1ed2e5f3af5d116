// Package utils contains general helper functions used across code4lm.
package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// RelativeSlashPath returns fullPath relative to rootPath using forward slashes.
// It returns "." when both resolve to the same directory.
func RelativeSlashPath(fullPath string, rootPath string) (string, error) {
	relativePath, relativeError := filepath.Rel(filepath.Clean(rootPath), filepath.Clean(fullPath))
	if relativeError != nil {
		return "", relativeError
	}
	return filepath.ToSlash(relativePath), nil
}

// JoinSlash appends name to a slash relative directory path. The root directory is represented by ".".
func JoinSlash(relativeDirectory string, name string) string {
	if relativeDirectory == "" || relativeDirectory == "." {
		return name
	}
	return relativeDirectory + pathSegmentSeparator + name
}

// IsWithinDirectory reports whether candidatePath equals directoryPath or lies underneath it.
// Both paths must be absolute and cleaned; a shared string prefix such as /project and /project2 does not count.
func IsWithinDirectory(candidatePath string, directoryPath string) bool {
	if candidatePath == directoryPath {
		return true
	}
	prefix := directoryPath
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(candidatePath, prefix)
}

// SanitizeList trims every value, drops empty values and removes duplicates while preserving order.
// A nil input yields nil so callers can distinguish "not provided" from "provided but empty".
func SanitizeList(values []string) []string {
	if values == nil {
		return nil
	}
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(value)
		if candidate != "" {
			trimmed = append(trimmed, candidate)
		}
	}
	return DeduplicateStrings(trimmed)
}

// DeduplicateStrings removes duplicate values from a slice while preserving order.
// The first occurrence of each unique value is kept.
func DeduplicateStrings(values []string) []string {
	encountered := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, exists := encountered[value]; exists {
			continue
		}
		encountered[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
