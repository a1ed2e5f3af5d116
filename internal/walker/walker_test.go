package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/code4lm/internal/config"
	"github.com/temirov/code4lm/internal/policy"
	"github.com/temirov/code4lm/internal/types"
)

type allowAllDecider struct{}

func (allowAllDecider) ShouldDescend(types.PathCandidate) bool { return true }
func (allowAllDecider) ShouldInclude(types.PathCandidate) bool { return true }

func createFiles(t *testing.T, rootDirectory string, relativePaths ...string) {
	t.Helper()
	for _, relativePath := range relativePaths {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(t, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(t, os.WriteFile(absolutePath, []byte(relativePath), 0o600))
	}
}

func defaultPolicy(t *testing.T, rootDirectory string, options config.BuildOptions) *policy.Policy {
	t.Helper()
	options.RootPath = rootDirectory
	configuration, _, err := config.Build(options)
	require.NoError(t, err)
	return policy.New(configuration)
}

func TestWalkOrdersAndConnects(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory,
		"b.txt",
		"A.txt",
		"a.txt",
		"zeta/inner/deep.txt",
		"zeta/z.txt",
		"Alpha/one.txt",
	)

	result, err := Walk(context.Background(), rootDirectory, allowAllDecider{})
	require.NoError(t, err)

	expectedLines := []string{
		"├── Alpha/",
		"│   └── one.txt",
		"├── zeta/",
		"│   ├── inner/",
		"│   │   └── deep.txt",
		"│   └── z.txt",
		"├── A.txt",
		"├── a.txt",
		"└── b.txt",
	}
	if diff := cmp.Diff(expectedLines, result.TreeLines); diff != "" {
		t.Fatalf("tree lines mismatch (-want +got):\n%s", diff)
	}

	expectedFiles := []string{"A.txt", "Alpha/one.txt", "a.txt", "b.txt", "zeta/inner/deep.txt", "zeta/z.txt"}
	if diff := cmp.Diff(expectedFiles, result.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, result.Warnings)
}

func TestWalkDefaultConfigurationScenario(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "src/a.py", "src/b.txt", "node_modules/x.py")

	result, err := Walk(context.Background(), rootDirectory, defaultPolicy(t, rootDirectory, config.BuildOptions{UseGitignore: true}))
	require.NoError(t, err)

	require.Equal(t, []string{"src/a.py"}, result.Files)
	require.Equal(t, []string{"└── src/", "    └── a.py"}, result.TreeLines)
	for _, line := range result.TreeLines {
		require.NotContains(t, line, "node_modules")
		require.NotContains(t, line, "b.txt")
	}
}

func TestWalkGitignoreScenario(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "app.log", "app.py")
	require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte("*.log\n"), 0o600))

	result, err := Walk(context.Background(), rootDirectory, defaultPolicy(t, rootDirectory, config.BuildOptions{UseGitignore: true}))
	require.NoError(t, err)

	require.Equal(t, []string{"app.py"}, result.Files)
	require.Equal(t, []string{"└── app.py"}, result.TreeLines)
}

func TestWalkPrunesExcludedDescendants(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "build/keep.go", "build/nested/keep.go", "cache/data.go", "main.go")
	require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte("cache/\n!cache/data.go\n"), 0o600))

	result, err := Walk(context.Background(), rootDirectory, defaultPolicy(t, rootDirectory, config.BuildOptions{UseGitignore: true}))
	require.NoError(t, err)

	require.Equal(t, []string{"main.go"}, result.Files)
	for _, line := range result.TreeLines {
		require.False(t, strings.Contains(line, "build") || strings.Contains(line, "cache"), line)
	}
}

func TestWalkEmptyExtensionsScenario(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "docs/readme.md", "venv/lib.py", "main.go")

	result, err := Walk(context.Background(), rootDirectory, defaultPolicy(t, rootDirectory, config.BuildOptions{Extensions: []string{}}))
	require.NoError(t, err)

	require.Empty(t, result.Files)
	require.Equal(t, []string{"└── docs/"}, result.TreeLines)
}

func TestWalkIsIdempotent(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "cmd/main.go", "internal/a.go", "internal/B.go", "README.md")
	decider := defaultPolicy(t, rootDirectory, config.BuildOptions{UseGitignore: true})

	first, err := Walk(context.Background(), rootDirectory, decider)
	require.NoError(t, err)
	second, err := Walk(context.Background(), rootDirectory, decider)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.IsNonDecreasing(t, first.Files)
}

func TestWalkUnreadableRoot(t *testing.T) {
	missingRoot := filepath.Join(t.TempDir(), "missing")

	result, err := Walk(context.Background(), missingRoot, allowAllDecider{})
	require.NoError(t, err)
	require.Empty(t, result.TreeLines)
	require.Empty(t, result.Files)
	require.Len(t, result.Warnings, 1)
}

func TestWalkUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "locked/secret.txt", "open.txt")
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	require.NoError(t, os.Chmod(lockedDirectory, 0o000))
	t.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	result, err := Walk(context.Background(), rootDirectory, allowAllDecider{})
	require.NoError(t, err)
	require.Equal(t, []string{"├── locked/", "└── open.txt"}, result.TreeLines)
	require.Equal(t, []string{"open.txt"}, result.Files)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "locked")
}

func TestWalkHonorsCancellation(t *testing.T) {
	rootDirectory := t.TempDir()
	createFiles(t, rootDirectory, "nested/file.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, rootDirectory, allowAllDecider{})
	require.True(t, errors.Is(err, context.Canceled))
}
