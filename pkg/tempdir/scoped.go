package tempdir

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🧰 TempDir is a safely allocated temporary directory together with its
// cleanup. Callers are expected to defer Cleanup immediately after a
// successful New.
type TempDir struct {
	dir string
}

// 🏭 New allocates a safe temporary directory. Candidates defaults to
// DefaultCandidates when nil.
func New(ctx context.Context, candidates []string, pattern string) (*TempDir, error) {
	if candidates == nil {
		candidates = DefaultCandidates()
	}
	dir, err := Allocate(ctx, candidates, pattern)
	if err != nil {
		return nil, err
	}
	return &TempDir{dir: dir}, nil
}

// Name returns the allocated directory.
func (t *TempDir) Name() string {
	return t.dir
}

// 🧹 Cleanup removes the directory and everything beneath it. Calling it
// more than once is harmless.
func (t *TempDir) Cleanup() error {
	if t.dir == "" {
		return nil
	}
	if err := os.RemoveAll(t.dir); err != nil {
		return errors.Errorf("removing temporary directory %q: %w", t.dir, err)
	}
	t.dir = ""
	return nil
}

// 🏃 With allocates a safe temporary directory, runs fn with it, and removes
// it on every exit path, including when fn returns an error.
func With(ctx context.Context, candidates []string, pattern string, fn func(dir string) error) error {
	tmp, err := New(ctx, candidates, pattern)
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := tmp.Cleanup(); cleanupErr != nil {
			zerolog.Ctx(ctx).Debug().Err(cleanupErr).Msg("cannot clean up temporary directory")
		}
	}()
	return fn(tmp.Name())
}
