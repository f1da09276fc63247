package copier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/testutils"
)

func TestClassifySymlinkLexical(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Verdict
	}{
		{"sibling_file", "file", VerdictInternal},
		{"dot_slash_sibling", "./file", VerdictInternal},
		{"subdir_entry", "dir/another_file", VerdictInternal},
		{"out_and_back_in", "../root/file", VerdictInternal},
		{"dangling_inside", "does-not-exist", VerdictInternal},
		{"root_itself", ".", VerdictInternal},
		{"parent_of_root", "..", VerdictExternal},
		{"sibling_of_root", "../outside", VerdictExternal},
		{"prefix_collision", "../rootbeer/file", VerdictExternal},
		{"deep_escape", "../../elsewhere", VerdictExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			root := filepath.Join(dir, "root")
			testutils.WriteFile(t, filepath.Join(root, "file"), "content")
			testutils.Mkdir(t, filepath.Join(dir, "rootbeer"))
			link := filepath.Join(root, "the_link")
			testutils.Symlink(t, tt.target, link)

			verdict, _, err := ClassifySymlink(link, root, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict)
		})
	}
}

func TestClassifySymlinkAbsoluteTargets(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	testutils.WriteFile(t, filepath.Join(root, "file"), "content")

	inside := filepath.Join(root, "abs_in")
	testutils.Symlink(t, filepath.Join(root, "file"), inside)
	verdict, target, err := ClassifySymlink(inside, root, false)
	require.NoError(t, err)
	assert.Equal(t, VerdictInternal, verdict)
	assert.Equal(t, filepath.Join(root, "file"), target)

	outside := filepath.Join(root, "abs_out")
	testutils.Symlink(t, filepath.Join(dir, "elsewhere"), outside)
	verdict, _, err = ClassifySymlink(outside, root, false)
	require.NoError(t, err)
	assert.Equal(t, VerdictExternal, verdict)
}

func TestClassifySymlinkNormalized(t *testing.T) {
	t.Run("chain_resolves_to_internal_target", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "root")
		testutils.WriteFile(t, filepath.Join(root, "file"), "content")
		testutils.Symlink(t, "file", filepath.Join(root, "hop1"))
		testutils.Symlink(t, "hop1", filepath.Join(root, "hop2"))

		verdict, target, err := ClassifySymlink(filepath.Join(root, "hop2"), root, true)
		require.NoError(t, err)
		assert.Equal(t, VerdictInternal, verdict)

		rootResolved, err := filepath.EvalSymlinks(root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(rootResolved, "file"), target)
	})

	t.Run("detour_through_outside_link_back_inside", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "root")
		testutils.WriteFile(t, filepath.Join(root, "file"), "content")
		// An outside link pointing back into the tree. Lexically the
		// in-tree link escapes; resolved, it lands on root/file.
		testutils.Symlink(t, filepath.Join(root, "file"), filepath.Join(dir, "detour"))
		testutils.Symlink(t, "../detour", filepath.Join(root, "via_detour"))

		verdict, _, err := ClassifySymlink(filepath.Join(root, "via_detour"), root, true)
		require.NoError(t, err)
		assert.Equal(t, VerdictInternal, verdict)

		// Without normalization the same link is judged by its immediate
		// target and counts as external.
		verdict, _, err = ClassifySymlink(filepath.Join(root, "via_detour"), root, false)
		require.NoError(t, err)
		assert.Equal(t, VerdictExternal, verdict)
	})

	t.Run("dangling_is_unresolvable", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "root")
		testutils.Mkdir(t, root)
		testutils.Symlink(t, "does-not-exist", filepath.Join(root, "dead"))

		verdict, target, err := ClassifySymlink(filepath.Join(root, "dead"), root, true)
		require.NoError(t, err)
		assert.Equal(t, VerdictUnresolvable, verdict)
		assert.Empty(t, target)
	})
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		root string
		path string
		want bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a/b/c/d", true},
		{"/a/b", "/a", false},
		{"/a/b", "/a/bc", false},
		{"/a/b", "/a/c", false},
		{"/a/b", "/", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isWithin(tt.root, tt.path), "isWithin(%q, %q)", tt.root, tt.path)
	}
}
