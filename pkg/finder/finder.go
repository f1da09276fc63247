// Package finder resolves installed collections to their on-disk source
// directories. The copy engine itself only accepts already-resolved paths;
// this is the adapter callers use to pick a source root.
package finder

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// CollectionsPathEnvVar lists additional collection roots, separated like
// PATH entries.
const CollectionsPathEnvVar = "ANSIBLE_COLLECTIONS_PATH"

// 🔍 Finder locates collections across a list of search roots. Each root is
// a directory expected to contain an ansible_collections subdirectory.
type Finder struct {
	roots []string
}

// 🏭 New creates a finder over the given search roots. When roots is empty,
// the roots come from CollectionsPathEnvVar plus the conventional user
// location ~/.ansible/collections.
func New(roots []string) *Finder {
	if len(roots) == 0 {
		roots = defaultRoots()
	}
	return &Finder{roots: roots}
}

func defaultRoots() []string {
	var roots []string
	if env := os.Getenv(CollectionsPathEnvVar); env != "" {
		for _, entry := range filepath.SplitList(env) {
			if entry != "" {
				roots = append(roots, entry)
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".ansible", "collections"))
	}
	return roots
}

// 🔍 Find returns the source directory of the collection namespace.name. The
// first root containing it wins.
func (f *Finder) Find(ctx context.Context, namespace, name string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if namespace == "" || name == "" {
		return "", errors.New("collection namespace and name are required")
	}
	for _, root := range f.roots {
		dir := filepath.Join(root, "ansible_collections", namespace, name)
		info, err := os.Stat(dir)
		if err != nil {
			continue
		}
		if info.IsDir() {
			logger.Debug().Str("dir", dir).Msg("found collection")
			return dir, nil
		}
	}
	return "", errors.Errorf("collection %s.%s not found in any search root (%s)",
		namespace, name, strings.Join(f.roots, ", "))
}

// 🪓 SplitFQCN splits a namespace.name collection reference.
func SplitFQCN(fqcn string) (namespace, name string, err error) {
	parts := strings.Split(fqcn, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid collection name %q, expected namespace.name", fqcn)
	}
	return parts[0], parts[1], nil
}
