// Package tempdir allocates temporary directories that are guaranteed not to
// live inside an ansible_collections tree. Staging a collection copy into a
// temporary directory that is itself part of a collections container would
// let the copy engine copy a tree into itself, so every candidate base
// location is vetted before use.
package tempdir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// CollectionContainerDir is the directory name marking a container of
// installable collections. A path is unsafe as a temp base when it or any of
// its ancestors carries this name.
const CollectionContainerDir = "ansible_collections"

// TempDirEnvVar overrides the candidate list when set.
const TempDirEnvVar = "ANTSIBULL_FILEUTILS_TMPDIR"

// 🚨 AllocationError means no candidate base directory yielded a safe,
// writable location.
type AllocationError struct {
	Candidates []string // candidate bases, in the order they were tried
	Err        error    // creation failure in the accepted base, if any
}

func (e *AllocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot create temporary directory: %v", e.Err)
	}
	return fmt.Sprintf("cannot find collection-friendly temporary directory, candidates: %s",
		strings.Join(e.Candidates, ", "))
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// 🔍 IsAcceptable reports whether dir is safe to place a staging area in: it
// must not be an ansible_collections directory nor live inside one. dir must
// be absolute.
func IsAcceptable(dir string) bool {
	for {
		if filepath.Base(dir) == CollectionContainerDir {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return true
		}
		dir = parent
	}
}

// 📋 DefaultCandidates returns the candidate base directories in preference
// order: the platform temp dir, the TempDirEnvVar override, the conventional
// *nix locations, and the working directory as a last resort.
func DefaultCandidates() []string {
	candidates := []string{os.TempDir()}
	if override := os.Getenv(TempDirEnvVar); override != "" {
		candidates = append(candidates, override)
	}
	candidates = append(candidates, "/tmp", "/var/tmp", "/usr/tmp")
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, cwd)
	}
	return candidates
}

// 🏭 Allocate creates a uniquely named temporary directory under the first
// candidate base that exists and is acceptable. pattern behaves as for
// os.MkdirTemp; the directory creation itself is atomic with respect to name
// collisions. The returned path is absolute.
func Allocate(ctx context.Context, candidates []string, pattern string) (string, error) {
	logger := zerolog.Ctx(ctx)

	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			logger.Debug().Str("candidate", candidate).Err(err).Msg("skipping unresolvable candidate")
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			logger.Debug().Str("candidate", abs).Msg("skipping missing candidate")
			continue
		}
		if !IsAcceptable(abs) {
			logger.Debug().Str("candidate", abs).Msg("rejecting candidate inside a collections container")
			continue
		}
		dir, err := os.MkdirTemp(abs, pattern)
		if err != nil {
			return "", &AllocationError{Candidates: candidates, Err: err}
		}
		logger.Debug().Str("dir", dir).Msg("allocated temporary directory")
		return dir, nil
	}
	return "", &AllocationError{Candidates: candidates}
}
