// Package walker performs the ordered depth-first traversal that produces tree lines and the admitted file list.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/code4lm/internal/types"
	"github.com/temirov/code4lm/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directoryNameSuffix = "/"
	rootRelativePath    = "."

	unreadableDirectoryWarningFormat = "unreadable directory %s: %v"
)

// Decider is the exclusion policy consulted for every traversal candidate.
type Decider interface {
	ShouldDescend(candidate types.PathCandidate) bool
	ShouldInclude(candidate types.PathCandidate) bool
}

// Result holds one traversal's rendered tree lines, lexicographically sorted files and recovered warnings.
type Result struct {
	TreeLines []string
	Files     []string
	Warnings  []string
}

// directoryFrame is one directory awaiting emission of its remaining renderable children.
type directoryFrame struct {
	prefix   string
	children []types.PathCandidate
	index    int
}

// Walk traverses rootPath sequentially. Children of a directory are emitted before its later siblings.
// Directories that cannot be listed are treated as empty and reported in Result.Warnings.
func Walk(ctx context.Context, rootPath string, decider Decider) (Result, error) {
	var result Result

	rootFrame, listWarning := newFrame(rootPath, rootRelativePath, "", decider)
	if listWarning != "" {
		result.Warnings = append(result.Warnings, listWarning)
	}
	stack := []*directoryFrame{rootFrame}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.index >= len(frame.children) {
			stack = stack[:len(stack)-1]
			continue
		}

		child := frame.children[frame.index]
		frame.index++
		isLast := frame.index == len(frame.children)

		connector := treeBranchConnector
		childPadding := treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPadding = treeLastPadding
		}

		if !child.IsDirectory {
			result.TreeLines = append(result.TreeLines, frame.prefix+connector+child.Name)
			result.Files = append(result.Files, child.RelativePath)
			continue
		}

		if contextError := ctx.Err(); contextError != nil {
			return Result{}, contextError
		}
		result.TreeLines = append(result.TreeLines, frame.prefix+connector+child.Name+directoryNameSuffix)
		childFrame, childWarning := newFrame(child.AbsolutePath, child.RelativePath, frame.prefix+childPadding, decider)
		if childWarning != "" {
			result.Warnings = append(result.Warnings, childWarning)
		}
		stack = append(stack, childFrame)
	}

	sort.Strings(result.Files)
	return result, nil
}

// newFrame lists a directory and keeps only the renderable children in display order.
func newFrame(absolutePath string, relativePath string, prefix string, decider Decider) (*directoryFrame, string) {
	frame := &directoryFrame{prefix: prefix}
	entries, readError := os.ReadDir(absolutePath)
	if readError != nil {
		return frame, fmt.Sprintf(unreadableDirectoryWarningFormat, relativePath, readError)
	}

	candidates := make([]types.PathCandidate, 0, len(entries))
	for _, entry := range entries {
		candidate := types.PathCandidate{
			AbsolutePath: filepath.Join(absolutePath, entry.Name()),
			RelativePath: utils.JoinSlash(relativePath, entry.Name()),
			IsDirectory:  entry.IsDir(),
			Name:         entry.Name(),
		}
		if candidate.IsDirectory && !decider.ShouldDescend(candidate) {
			continue
		}
		if !candidate.IsDirectory && !decider.ShouldInclude(candidate) {
			continue
		}
		candidates = append(candidates, candidate)
	}

	sortCandidates(candidates)
	frame.children = candidates
	return frame, ""
}

// sortCandidates orders directories first, then case-insensitive names, then raw names.
func sortCandidates(candidates []types.PathCandidate) {
	sort.SliceStable(candidates, func(left, right int) bool {
		leftCandidate, rightCandidate := candidates[left], candidates[right]
		if leftCandidate.IsDirectory != rightCandidate.IsDirectory {
			return leftCandidate.IsDirectory
		}
		leftFolded, rightFolded := strings.ToLower(leftCandidate.Name), strings.ToLower(rightCandidate.Name)
		if leftFolded != rightFolded {
			return leftFolded < rightFolded
		}
		return leftCandidate.Name < rightCandidate.Name
	})
}
