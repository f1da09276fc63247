// Package staging provides the scoped copy session: it stages a copy of a
// collection source tree under a safely allocated temporary directory, laid
// out so that the temp root can be preferred over installed collections
// (collections/ansible_collections/<namespace>/<name>), and guarantees the
// whole staging area is removed again on every exit path.
package staging

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/copier"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/tempdir"
)

// 🎯 TreeCopier copies a source tree into a destination that does not exist
// yet. Both copier.Copier and copier.GitCopier satisfy it.
type TreeCopier interface {
	Copy(ctx context.Context, srcRoot, dstRoot string) error
}

// 🔧 Options configures a staging session.
type Options struct {
	// SourceDirectory is the collection checkout to stage.
	SourceDirectory string
	// Namespace and Name identify the collection; they determine where
	// under the staging root the copy lands.
	Namespace string
	Name      string
	// Copier performs the tree copy. Defaults to a metadata-preserving
	// copier.Copier with an empty exclusion set.
	Copier TreeCopier
	// TempDirCandidates overrides the candidate base directories for the
	// staging root. Defaults to tempdir.DefaultCandidates().
	TempDirCandidates []string
}

func (o *Options) validate() error {
	if o.SourceDirectory == "" {
		return errors.New("source directory is required")
	}
	if o.Namespace == "" || o.Name == "" {
		return errors.New("collection namespace and name are required")
	}
	return nil
}

// 📦 Staged is a populated staging area. It owns the temporary tree it
// lives in; Cleanup is the only way that tree gets deleted.
type Staged struct {
	tmp           *tempdir.TempDir
	collectionDir string
}

// RootDir returns the staging root, suitable as a collections search path.
func (s *Staged) RootDir() string {
	return s.tmp.Name()
}

// CollectionDir returns the directory the collection was copied to.
func (s *Staged) CollectionDir() string {
	return s.collectionDir
}

// 🧹 Cleanup recursively removes the staging area.
func (s *Staged) Cleanup() error {
	return s.tmp.Cleanup()
}

// 🏭 Stage allocates a safe temporary directory and copies the collection
// into it. On any failure the partially built staging area is removed before
// the error is returned, so callers never observe a half-written tree.
func Stage(ctx context.Context, opts Options) (*Staged, error) {
	logger := zerolog.Ctx(ctx)

	if err := opts.validate(); err != nil {
		return nil, err
	}

	tmp, err := tempdir.New(ctx, opts.TempDirCandidates, "antsibull-fileutils-*")
	if err != nil {
		return nil, err
	}

	containerDir := filepath.Join(tmp.Name(), "collections", "ansible_collections", opts.Namespace)
	if err := os.MkdirAll(containerDir, 0o755); err != nil {
		cleanup(ctx, tmp)
		return nil, errors.Errorf("creating collection container directory: %w", err)
	}

	collectionDir := filepath.Join(containerDir, opts.Name)
	logger.Debug().Str("dir", collectionDir).Msg("temporary collection directory")

	cp := opts.Copier
	if cp == nil {
		cp = copier.New(copier.Policy{PreserveMetadata: true})
	}
	if err := cp.Copy(ctx, opts.SourceDirectory, collectionDir); err != nil {
		cleanup(ctx, tmp)
		return nil, err
	}

	logger.Debug().Msg("temporary collection directory has been populated")
	return &Staged{tmp: tmp, collectionDir: collectionDir}, nil
}

// 🏃 Run stages the collection, hands it to fn, and removes the staging area
// when fn returns, regardless of how it returns.
func Run(ctx context.Context, opts Options, fn func(ctx context.Context, staged *Staged) error) error {
	staged, err := Stage(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup(ctx, staged.tmp)
	return fn(ctx, staged)
}

func cleanup(ctx context.Context, tmp *tempdir.TempDir) {
	if err := tmp.Cleanup(); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("cannot clean up staging area")
	}
}
