package fileio_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/fileio"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/testutils"
)

func TestCopyFile(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	testutils.WriteFile(t, src, "content")

	written, err := fileio.CopyFile(ctx, src, dst, fileio.CopyOptions{})
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))
}

func TestCopyFileContentCheck(t *testing.T) {
	ctx := testutils.TestContext(t)

	t.Run("identical_destination_untouched", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		testutils.WriteFile(t, src, "content")
		testutils.WriteFile(t, dst, "content")
		old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(dst, old, old))

		written, err := fileio.CopyFile(ctx, src, dst, fileio.CopyOptions{
			CheckContent:     true,
			FileCheckContent: 1 << 20,
		})
		require.NoError(t, err)
		assert.False(t, written)

		// Untouched means the mtime survives too.
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.WithinDuration(t, old, info.ModTime(), time.Second)
	})

	t.Run("different_destination_rewritten", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		testutils.WriteFile(t, src, "new content")
		testutils.WriteFile(t, dst, "old content")

		written, err := fileio.CopyFile(ctx, src, dst, fileio.CopyOptions{
			CheckContent:     true,
			FileCheckContent: 1 << 20,
		})
		require.NoError(t, err)
		assert.True(t, written)

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "new content", string(data))
	})

	t.Run("oversized_destination_rewritten_without_hashing", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "src")
		dst := filepath.Join(dir, "dst")
		testutils.WriteFile(t, src, "content")
		testutils.WriteFile(t, dst, "content")

		written, err := fileio.CopyFile(ctx, src, dst, fileio.CopyOptions{
			CheckContent:     true,
			FileCheckContent: 3,
		})
		require.NoError(t, err)
		assert.True(t, written)
	})
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	testutils.WriteFile(t, a, "same")
	testutils.WriteFile(t, b, "same")
	testutils.WriteFile(t, c, "different")

	sumA, err := fileio.Checksum(a)
	require.NoError(t, err)
	sumB, err := fileio.Checksum(b)
	require.NoError(t, err)
	sumC, err := fileio.Checksum(c)
	require.NoError(t, err)

	assert.Equal(t, sumA, sumB)
	assert.NotEqual(t, sumA, sumC)

	_, err = fileio.Checksum(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	ctx := testutils.TestContext(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	written, err := fileio.WriteFile(ctx, path, []byte("content"), 1<<20)
	require.NoError(t, err)
	assert.True(t, written)

	// Writing the same content again is skipped.
	written, err = fileio.WriteFile(ctx, path, []byte("content"), 1<<20)
	require.NoError(t, err)
	assert.False(t, written)

	// Changed content is written.
	written, err = fileio.WriteFile(ctx, path, []byte("changed"), 1<<20)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := fileio.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))
}
