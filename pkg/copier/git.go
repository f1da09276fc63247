package copier

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/vcs"
)

// 🌿 GitCopier copies a directory that is part of a git repository. Instead
// of walking the tree, it copies exactly the files git reports as tracked or
// untracked-but-not-ignored, so build products and other ignored clutter
// never reach the destination.
type GitCopier struct{}

// 🏭 NewGitCopier creates a git-aware copier.
func NewGitCopier() *GitCopier {
	return &GitCopier{}
}

// 🏃 Copy copies the git-known files under srcRoot into dstRoot. dstRoot
// must not exist; it is created with mode 0700, as are all intermediate
// directories. Files deleted from disk since git last saw them are skipped.
func (g *GitCopier) Copy(ctx context.Context, srcRoot, dstRoot string) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", srcRoot).Msg("identifying files not ignored by git")

	files, err := vcs.ListGitFiles(ctx, srcRoot)
	if err != nil {
		return copyErr("list git files", srcRoot, errors.Errorf("listing files not ignored by git: %w", err))
	}

	logger.Debug().Int("count", len(files)).Str("from", srcRoot).Str("to", dstRoot).Msg("copying git-known files")

	if err := os.Mkdir(dstRoot, 0o700); err != nil {
		return copyErr("create dir", dstRoot, err)
	}

	createdDirs := map[string]struct{}{}
	for _, file := range files {
		srcPath := filepath.Join(srcRoot, file)

		// Deleted files are part of git's listing; they simply no longer
		// exist on disk.
		info, err := os.Lstat(srcPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return copyErr("stat", srcPath, err)
		}

		dir := filepath.Dir(file)
		if _, ok := createdDirs[dir]; !ok {
			if err := os.MkdirAll(filepath.Join(dstRoot, dir), 0o700); err != nil {
				return copyErr("create dir", filepath.Join(dstRoot, dir), err)
			}
			createdDirs[dir] = struct{}{}
		}

		dstPath := filepath.Join(dstRoot, file)
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(srcPath)
			if err != nil {
				return copyErr("read symlink", srcPath, err)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return copyErr("create symlink", dstPath, err)
			}
			continue
		}
		if !info.Mode().IsRegular() {
			return copyErr("copy entry", srcPath, errors.Errorf("unsupported entry type %s", info.Mode().Type()))
		}
		if err := copyFileContents(srcPath, dstPath, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}
