package copier_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/copier"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/testutils"
)

func commitAll(t *testing.T, dir string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com"},
	})
	require.NoError(t, err)
}

func TestGitCopierSkipsIgnoredFiles(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutils.WriteFile(t, filepath.Join(src, ".gitignore"), "*.pyc\n")
	testutils.WriteFile(t, filepath.Join(src, "plugin.py"), "code")
	testutils.WriteFile(t, filepath.Join(src, "roles", "main.yml"), "---\n")
	testutils.Symlink(t, "plugin.py", filepath.Join(src, "alias.py"))
	commitAll(t, src)
	testutils.WriteFile(t, filepath.Join(src, "untracked.txt"), "new")
	testutils.WriteFile(t, filepath.Join(src, "plugin.pyc"), "bytecode")

	dst := filepath.Join(dir, "dst")
	require.NoError(t, copier.NewGitCopier().Copy(ctx, src, dst))

	assert.FileExists(t, filepath.Join(dst, "plugin.py"))
	assert.FileExists(t, filepath.Join(dst, "roles", "main.yml"))
	assert.FileExists(t, filepath.Join(dst, "untracked.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "plugin.pyc"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))

	// Symlinks are recreated verbatim.
	target, err := os.Readlink(filepath.Join(dst, "alias.py"))
	require.NoError(t, err)
	assert.Equal(t, "plugin.py", target)
}

func TestGitCopierSkipsDeletedFiles(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutils.WriteFile(t, filepath.Join(src, "keep"), "k")
	testutils.WriteFile(t, filepath.Join(src, "gone"), "g")
	commitAll(t, src)
	require.NoError(t, os.Remove(filepath.Join(src, "gone")))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, copier.NewGitCopier().Copy(ctx, src, dst))

	assert.FileExists(t, filepath.Join(dst, "keep"))
	assert.NoFileExists(t, filepath.Join(dst, "gone"))
}

func TestGitCopierRequiresRepository(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutils.WriteFile(t, filepath.Join(src, "file"), "content")

	err := copier.NewGitCopier().Copy(ctx, src, filepath.Join(dir, "dst"))
	require.Error(t, err)

	var copyErr *copier.CopyError
	require.ErrorAs(t, err, &copyErr)
	assert.Equal(t, "list git files", copyErr.Op)
}

func TestGitCopierRequiresFreshDestination(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	testutils.WriteFile(t, filepath.Join(src, "file"), "content")
	commitAll(t, src)
	dst := filepath.Join(dir, "dst")
	testutils.Mkdir(t, dst)

	err := copier.NewGitCopier().Copy(ctx, src, dst)
	require.Error(t, err)

	var copyErr *copier.CopyError
	require.ErrorAs(t, err, &copyErr)
	assert.Equal(t, "create dir", copyErr.Op)
}
