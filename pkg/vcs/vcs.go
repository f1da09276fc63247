// Package vcs detects version-control repositories and lists the files they
// track. It is what makes the git-aware copier variant possible: a collection
// checkout usually contains build products and editor droppings that git
// ignores, and those have no business in a staged copy.
package vcs

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Kind identifies the version-control system a path belongs to.
//
// NOTE: more kinds may be added over time. Treat unknown values like
// KindNone.
type Kind string

const (
	KindNone Kind = "none"
	KindGit  Kind = "git"
)

// 🔍 Detect reports whether path lies inside a version-control work tree.
// Detection failures are not errors from the caller's point of view; they
// are logged at debug level and reported as KindNone.
func Detect(ctx context.Context, path string) Kind {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("trying to determine whether path is part of a git repository")

	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		logger.Info().Str("path", path).Msg("identified path as part of a git repository")
		return KindGit
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		logger.Debug().Str("path", path).Err(err).Msg("cannot identify VCS")
	}
	return KindNone
}

// 📋 ListGitFiles returns the files git knows about under path: everything
// in the index plus untracked files that are not ignored. Paths are returned
// relative to path, in the local separator convention, sorted. Files deleted
// from disk but still present in the index are included; callers are
// expected to skip entries that no longer exist.
func ListGitFiles(ctx context.Context, path string) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Errorf("opening repository at %q: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Errorf("getting worktree: %w", err)
	}

	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving %q: %w", path, err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), pathAbs)
	if err != nil {
		return nil, errors.Errorf("relativizing %q against worktree root: %w", path, err)
	}
	prefix = filepath.ToSlash(prefix)

	seen := map[string]struct{}{}

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, errors.Errorf("reading index: %w", err)
	}
	for _, entry := range idx.Entries {
		if rel, ok := stripPrefix(entry.Name, prefix); ok {
			seen[rel] = struct{}{}
		}
	}

	// Untracked-but-not-ignored files only show up in the worktree status.
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Errorf("reading worktree status: %w", err)
	}
	for name, fileStatus := range status {
		if fileStatus.Worktree != git.Untracked {
			continue
		}
		if rel, ok := stripPrefix(name, prefix); ok {
			seen[rel] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for name := range seen {
		files = append(files, filepath.FromSlash(name))
	}
	sort.Strings(files)

	logger.Debug().Str("path", path).Int("count", len(files)).Msg("listed files known to git")
	return files, nil
}

// stripPrefix reduces a worktree-root-relative slash path to one relative to
// the prefix directory. ok is false when name lies outside the prefix.
func stripPrefix(name, prefix string) (string, bool) {
	if prefix == "." {
		return name, true
	}
	if strings.HasPrefix(name, prefix+"/") {
		return name[len(prefix)+1:], true
	}
	return "", false
}
