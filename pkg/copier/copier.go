package copier

import (
	"context"
	"os"
	"path/filepath"

	"github.com/KarpelesLab/reflink"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌳 Copier reproduces a source directory tree in a destination directory
// according to a Policy. The source tree is never modified; everything the
// copier creates lives under the destination root.
type Copier struct {
	policy Policy
}

// 🏭 New creates a copier for the given policy.
func New(policy Policy) *Copier {
	return &Copier{policy: policy}
}

// 📦 Copy is shorthand for New(policy).Copy(ctx, srcRoot, dstRoot).
func Copy(ctx context.Context, srcRoot, dstRoot string, policy Policy) error {
	return New(policy).Copy(ctx, srcRoot, dstRoot)
}

// 📦 CopyWithRepositoryAwareness copies the tree like Copy, but forces the
// version-control metadata directory at the source root to be included (or
// not) regardless of the policy's exclusion patterns.
func CopyWithRepositoryAwareness(ctx context.Context, srcRoot, dstRoot string, policy Policy, includeRepositoryMetadata bool) error {
	policy.IncludeVCSMetadata = includeRepositoryMetadata
	return New(policy).Copy(ctx, srcRoot, dstRoot)
}

// 🏃 Copy copies the tree at srcRoot into dstRoot. dstRoot must either not
// exist (its parent must) or be an empty directory. The first unrecoverable
// read, write, or resolution failure aborts the whole copy with a
// *CopyError; a partial collection copy is unsafe to hand to any downstream
// build step, so nothing is skipped silently.
func (c *Copier) Copy(ctx context.Context, srcRoot, dstRoot string) error {
	logger := zerolog.Ctx(ctx)

	srcAbs, err := filepath.Abs(srcRoot)
	if err != nil {
		return copyErr("resolve path", srcRoot, err)
	}
	dstAbs, err := filepath.Abs(dstRoot)
	if err != nil {
		return copyErr("resolve path", dstRoot, err)
	}

	srcInfo, err := os.Stat(srcAbs)
	if err != nil {
		return copyErr("stat", srcAbs, err)
	}
	if !srcInfo.IsDir() {
		return copyErr("copy tree", srcAbs, errors.New("source is not a directory"))
	}

	if err := prepareDestination(dstAbs, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	logger.Debug().Str("from", srcAbs).Str("to", dstAbs).Msg("copying directory tree")

	if err := c.copyTree(ctx, srcAbs, dstAbs, srcAbs, dstAbs, true); err != nil {
		return err
	}
	if c.policy.PreserveMetadata {
		preserveMetadata(ctx, srcAbs, dstAbs)
	}
	return nil
}

// prepareDestination creates dstRoot, or accepts it if it already exists as
// an empty directory.
func prepareDestination(dstRoot string, perm os.FileMode) error {
	existing, err := os.ReadDir(dstRoot)
	switch {
	case err == nil:
		if len(existing) > 0 {
			return copyErr("prepare destination", dstRoot, errors.New("directory exists and is not empty"))
		}
		return nil
	case os.IsNotExist(err):
		if err := os.Mkdir(dstRoot, perm|0o700); err != nil {
			return copyErr("create dir", dstRoot, err)
		}
		return nil
	default:
		return copyErr("read dir", dstRoot, err)
	}
}

func (c *Copier) copyTree(ctx context.Context, srcDir, dstDir, srcRoot, dstRoot string, top bool) error {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return copyErr("read dir", srcDir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if top {
			// Exclusion applies to direct children of the root only. An
			// explicit request to carry the VCS metadata directory wins
			// over an exclusion pattern matching it.
			if name == VCSMetadataDir && c.policy.IncludeVCSMetadata {
				zerolog.Ctx(ctx).Debug().Str("entry", name).Msg("including VCS metadata directory")
			} else {
				skip, err := c.policy.excluded(name)
				if err != nil {
					return copyErr("match exclude pattern", filepath.Join(srcDir, name), err)
				}
				if skip {
					zerolog.Ctx(ctx).Debug().Str("entry", name).Msg("skipping excluded entry")
					continue
				}
			}
		}
		if err := c.copyEntry(ctx, filepath.Join(srcDir, name), filepath.Join(dstDir, name), srcRoot, dstRoot); err != nil {
			return err
		}
	}
	return nil
}

func (c *Copier) copyEntry(ctx context.Context, srcPath, dstPath, srcRoot, dstRoot string) error {
	info, err := os.Lstat(srcPath)
	if err != nil {
		return copyErr("stat", srcPath, err)
	}
	mode := info.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		zerolog.Ctx(ctx).Debug().Str("from", srcPath).Str("to", dstPath).Msg("copying symlink")
		return c.copySymlink(ctx, srcPath, dstPath, srcRoot, dstRoot)

	case mode.IsDir():
		zerolog.Ctx(ctx).Debug().Str("from", srcPath).Str("to", dstPath).Msg("copying directory")
		// Keep the directory writable while its children are copied; exact
		// permissions and timestamps are applied afterwards, since writing
		// children updates the parent's mtime anyway.
		if err := os.Mkdir(dstPath, mode.Perm()|0o700); err != nil {
			return copyErr("create dir", dstPath, err)
		}
		if err := c.copyTree(ctx, srcPath, dstPath, srcRoot, dstRoot, false); err != nil {
			return err
		}
		if c.policy.PreserveMetadata {
			preserveMetadata(ctx, srcPath, dstPath)
		}
		return nil

	case mode.IsRegular():
		zerolog.Ctx(ctx).Debug().Str("from", srcPath).Str("to", dstPath).Msg("copying file")
		if err := copyFileContents(srcPath, dstPath, mode.Perm()); err != nil {
			return err
		}
		if c.policy.PreserveMetadata {
			preserveMetadata(ctx, srcPath, dstPath)
		}
		return nil

	default:
		return copyErr("copy entry", srcPath, errors.Errorf("unsupported entry type %s", mode.Type()))
	}
}

// copyFileContents copies a regular file's content. Filesystems supporting
// reflinks clone the data instead of duplicating it; everywhere else this
// falls back to a plain read/write copy.
func copyFileContents(srcPath, dstPath string, perm os.FileMode) error {
	if err := reflink.Auto(srcPath, dstPath); err != nil {
		return copyErr("copy file", srcPath, err)
	}
	if err := os.Chmod(dstPath, perm); err != nil {
		return copyErr("set permissions", dstPath, err)
	}
	return nil
}

func (c *Copier) copySymlink(ctx context.Context, srcPath, dstPath, srcRoot, dstRoot string) error {
	verdict, target, err := ClassifySymlink(srcPath, srcRoot, c.policy.NormalizeSymlinks)
	if err != nil {
		return copyErr("classify symlink", srcPath, err)
	}
	zerolog.Ctx(ctx).Debug().Str("link", srcPath).Stringer("verdict", verdict).Str("target", target).Msg("classified symlink")

	switch verdict {
	case VerdictUnresolvable:
		return copyErr("resolve symlink", srcPath, errors.New("symlink target does not exist"))

	case VerdictInternal:
		// The classifier compared against the resolved root when
		// normalizing; relativize against the same base.
		root := srcRoot
		if c.policy.NormalizeSymlinks {
			if resolved, err := filepath.EvalSymlinks(srcRoot); err == nil {
				root = resolved
			}
		}
		relTarget, err := filepath.Rel(root, target)
		if err != nil {
			return copyErr("relativize symlink target", srcPath, err)
		}
		destTarget, err := filepath.Rel(filepath.Dir(dstPath), filepath.Join(dstRoot, relTarget))
		if err != nil {
			return copyErr("relativize symlink target", srcPath, err)
		}
		if err := os.Symlink(destTarget, dstPath); err != nil {
			return copyErr("create symlink", dstPath, err)
		}
		return nil

	case VerdictExternal:
		resolved, err := filepath.EvalSymlinks(srcPath)
		if err != nil {
			return copyErr("resolve symlink", srcPath, err)
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return copyErr("stat", resolved, err)
		}
		if info.IsDir() {
			return c.materializeTree(ctx, resolved, dstPath)
		}
		if err := copyFileContents(resolved, dstPath, info.Mode().Perm()); err != nil {
			return err
		}
		if c.policy.PreserveMetadata {
			preserveMetadata(ctx, resolved, dstPath)
		}
		return nil

	default:
		return copyErr("classify symlink", srcPath, errors.Errorf("unknown verdict %d", verdict))
	}
}

// materializeTree deep-copies the directory an external symlink resolves to.
// Links inside the external tree are followed rather than classified; the
// destination contains plain files and directories only.
func (c *Copier) materializeTree(ctx context.Context, srcDir, dstDir string) error {
	info, err := os.Stat(srcDir)
	if err != nil {
		return copyErr("stat", srcDir, err)
	}
	if err := os.Mkdir(dstDir, info.Mode().Perm()|0o700); err != nil {
		return copyErr("create dir", dstDir, err)
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return copyErr("read dir", srcDir, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(srcDir, entry.Name())
		dstPath := filepath.Join(dstDir, entry.Name())
		entryInfo, err := os.Stat(srcPath)
		if err != nil {
			return copyErr("stat", srcPath, err)
		}
		switch {
		case entryInfo.IsDir():
			if err := c.materializeTree(ctx, srcPath, dstPath); err != nil {
				return err
			}
		case entryInfo.Mode().IsRegular():
			if err := copyFileContents(srcPath, dstPath, entryInfo.Mode().Perm()); err != nil {
				return err
			}
			if c.policy.PreserveMetadata {
				preserveMetadata(ctx, srcPath, dstPath)
			}
		default:
			return copyErr("copy entry", srcPath, errors.Errorf("unsupported entry type %s", entryInfo.Mode().Type()))
		}
	}
	if c.policy.PreserveMetadata {
		preserveMetadata(ctx, srcDir, dstDir)
	}
	return nil
}
