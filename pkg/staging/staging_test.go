package staging_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/staging"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/testutils"
)

func sourceCollection(t *testing.T, dir string) string {
	t.Helper()
	src := filepath.Join(dir, "checkout")
	testutils.WriteFile(t, filepath.Join(src, "galaxy.yml"), "namespace: ns\nname: col\n")
	testutils.WriteFile(t, filepath.Join(src, "plugins", "modules", "mod.py"), "code")
	return src
}

func TestStageLayout(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := sourceCollection(t, dir)
	base := filepath.Join(dir, "base")
	testutils.Mkdir(t, base)

	staged, err := staging.Stage(ctx, staging.Options{
		SourceDirectory:   src,
		Namespace:         "ns",
		Name:              "col",
		TempDirCandidates: []string{base},
	})
	require.NoError(t, err)
	defer staged.Cleanup()

	// The copy lands at collections/ansible_collections/<ns>/<name> under
	// the staging root.
	want := filepath.Join(staged.RootDir(), "collections", "ansible_collections", "ns", "col")
	assert.Equal(t, want, staged.CollectionDir())
	assert.Equal(t, base, filepath.Dir(staged.RootDir()))
	testutils.AssertTreesEqual(t, src, staged.CollectionDir())
}

func TestStageValidation(t *testing.T) {
	ctx := testutils.TestContext(t)

	_, err := staging.Stage(ctx, staging.Options{Namespace: "ns", Name: "col"})
	require.ErrorContains(t, err, "source directory")

	_, err = staging.Stage(ctx, staging.Options{SourceDirectory: "/some/where"})
	require.ErrorContains(t, err, "namespace and name")
}

func TestStageCleansUpOnCopyFailure(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := sourceCollection(t, dir)
	base := filepath.Join(dir, "base")
	testutils.Mkdir(t, base)

	wantErr := errors.New("copy exploded")
	_, err := staging.Stage(ctx, staging.Options{
		SourceDirectory:   src,
		Namespace:         "ns",
		Name:              "col",
		Copier:            failingCopier{err: wantErr},
		TempDirCandidates: []string{base},
	})
	require.ErrorIs(t, err, wantErr)

	// Nothing is left behind under the candidate base.
	entries, readErr := os.ReadDir(base)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunCleansUpAfterCallback(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := sourceCollection(t, dir)
	base := filepath.Join(dir, "base")
	testutils.Mkdir(t, base)

	opts := staging.Options{
		SourceDirectory:   src,
		Namespace:         "ns",
		Name:              "col",
		TempDirCandidates: []string{base},
	}

	t.Run("on_success", func(t *testing.T) {
		var root string
		require.NoError(t, staging.Run(ctx, opts, func(ctx context.Context, staged *staging.Staged) error {
			root = staged.RootDir()
			assert.FileExists(t, filepath.Join(staged.CollectionDir(), "galaxy.yml"))
			return nil
		}))
		assert.NoDirExists(t, root)
	})

	t.Run("on_error", func(t *testing.T) {
		var root string
		wantErr := errors.New("callback failed")
		err := staging.Run(ctx, opts, func(ctx context.Context, staged *staging.Staged) error {
			root = staged.RootDir()
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)
		assert.NoDirExists(t, root)
	})
}

type failingCopier struct {
	err error
}

func (f failingCopier) Copy(ctx context.Context, srcRoot, dstRoot string) error {
	// Leave a partial tree behind to prove the session removes it.
	if err := os.MkdirAll(filepath.Join(dstRoot, "partial"), 0o755); err != nil {
		return err
	}
	return f.err
}
