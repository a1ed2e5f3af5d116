package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileMatchesGitignoreSemantics(t *testing.T) {
	t.Parallel()

	lines := []string{
		"# build artifacts",
		"",
		"*.log",
		"!keep.log",
		"build/",
		"/rooted.txt",
		"docs/generated",
		"**/cache",
		"temp?.txt",
		"[ab].md",
	}
	matcher, skipped := Compile(lines)
	require.Empty(t, skipped)

	testCases := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "basename_glob_at_root", path: "app.log", expected: true},
		{name: "basename_glob_nested", path: "src/deep/app.log", expected: true},
		{name: "negation_reincludes", path: "keep.log", expected: false},
		{name: "negation_reincludes_nested", path: "src/keep.log", expected: false},
		{name: "directory_only_matches_directory", path: "build/", expected: true},
		{name: "directory_only_matches_nested_directory", path: "src/build/", expected: true},
		{name: "directory_only_skips_file", path: "build", expected: false},
		{name: "anchored_matches_root", path: "rooted.txt", expected: true},
		{name: "anchored_skips_nested", path: "src/rooted.txt", expected: false},
		{name: "slash_pattern_is_anchored", path: "docs/generated/", expected: true},
		{name: "slash_pattern_not_nested", path: "src/docs/generated/", expected: false},
		{name: "double_star_any_depth", path: "a/b/cache/", expected: true},
		{name: "question_mark", path: "temp1.txt", expected: true},
		{name: "question_mark_single_character", path: "temp12.txt", expected: false},
		{name: "character_class", path: "a.md", expected: true},
		{name: "character_class_miss", path: "c.md", expected: false},
		{name: "unrelated_file", path: "main.go", expected: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, matcher.Matches(testCase.path), "path %q", testCase.path)
		})
	}
}

func TestCompileLaterPatternOverridesEarlier(t *testing.T) {
	t.Parallel()

	matcher, _ := Compile([]string{"!important.log", "*.log"})
	require.True(t, matcher.Matches("important.log"), "later exclusion must win over earlier negation")

	matcher, _ = Compile([]string{"*.log", "!important.log"})
	require.False(t, matcher.Matches("important.log"), "later negation must win over earlier exclusion")
}

func TestCompileSkipsMalformedLinesIndividually(t *testing.T) {
	t.Parallel()

	matcher, skipped := Compile([]string{"*.log", "src/[unclosed", "dist/"})
	require.Len(t, skipped, 1)
	require.Equal(t, 2, skipped[0].Number)
	require.Equal(t, "src/[unclosed", skipped[0].Text)
	require.True(t, matcher.Matches("server.log"))
	require.True(t, matcher.Matches("dist/"))
}

func TestCompileWithoutPatternsPassesThrough(t *testing.T) {
	t.Parallel()

	matcher, skipped := Compile([]string{"# only comments", "   "})
	require.Empty(t, skipped)
	require.False(t, matcher.Matches("anything.log"))
	require.IsType(t, passThroughMatcher{}, matcher)
}

func TestDisabledNeverIgnores(t *testing.T) {
	t.Parallel()

	matcher := Disabled()
	for _, path := range []string{"", "a.log", "build/", "node_modules/x.py"} {
		require.False(t, matcher.Matches(path), "path %q", path)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing_file_passes_through", func(t *testing.T) {
		t.Parallel()
		matcher, report := Load(t.TempDir(), true)
		require.False(t, report.Found)
		require.NoError(t, report.ReadError)
		require.False(t, matcher.Matches("app.log"))
	})

	t.Run("disabled_layer_ignores_file", func(t *testing.T) {
		t.Parallel()
		rootDirectory := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte("*.log\n"), 0o644))
		matcher, report := Load(rootDirectory, false)
		require.Empty(t, report.Path)
		require.False(t, matcher.Matches("app.log"))
	})

	t.Run("reads_root_gitignore", func(t *testing.T) {
		t.Parallel()
		rootDirectory := t.TempDir()
		content := "*.log\r\nsecret/\n[bad\n"
		require.NoError(t, os.WriteFile(filepath.Join(rootDirectory, ".gitignore"), []byte(content), 0o644))
		matcher, report := Load(rootDirectory, true)
		require.True(t, report.Found)
		require.NoError(t, report.ReadError)
		require.Len(t, report.Skipped, 1)
		require.True(t, matcher.Matches("app.log"))
		require.True(t, matcher.Matches("secret/"))
		require.False(t, matcher.Matches("app.py"))
	})

	t.Run("unreadable_file_degrades", func(t *testing.T) {
		t.Parallel()
		rootDirectory := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(rootDirectory, ".gitignore"), 0o755))
		matcher, report := Load(rootDirectory, true)
		require.True(t, report.Found)
		require.Error(t, report.ReadError)
		require.False(t, matcher.Matches("app.log"))
	})
}
