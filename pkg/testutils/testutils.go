// Package testutils holds shared helpers for building and comparing
// directory trees in tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// 🧪 TestContext returns a context carrying a test-writer logger, so debug
// output from the code under test lands in the test log.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 🧪 WriteFile creates a file with the given content, creating parents as
// needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// 🧪 Mkdir creates a directory and its parents.
func Mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

// 🧪 Symlink creates a symlink at path pointing at target, creating parents
// as needed.
func Symlink(t *testing.T, target, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.Symlink(target, path))
}

// 🧪 Manifest describes a tree as sorted "path kind[ detail]" lines:
// regular files carry their content, symlinks their literal target. It makes
// tree comparisons readable in test failures.
func Manifest(t *testing.T, root string) []string {
	t.Helper()
	var lines []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			lines = append(lines, rel+" link "+filepath.ToSlash(target))
		case info.IsDir():
			lines = append(lines, rel+" dir")
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			lines = append(lines, rel+" file "+strings.ReplaceAll(string(data), "\n", "\\n"))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(lines)
	return lines
}

// 🧪 AssertTreesEqual fails the test unless both trees contain the same
// entries with the same content and link targets.
func AssertTreesEqual(t *testing.T, want, got string) {
	t.Helper()
	require.Equal(t, Manifest(t, want), Manifest(t, got))
}
