package copier

import (
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Verdict is the classification of a symlink relative to the tree being
// copied.
type Verdict int

const (
	// VerdictInternal means the link's target lies inside the tree. The
	// link is recreated as a link in the destination.
	VerdictInternal Verdict = iota
	// VerdictExternal means the link's target lies outside the tree. The
	// target's content is copied in place of the link.
	VerdictExternal
	// VerdictUnresolvable means the link's target does not exist. Callers
	// decide whether that is fatal; during a normalizing copy it is.
	VerdictUnresolvable
)

func (v Verdict) String() string {
	switch v {
	case VerdictInternal:
		return "internal"
	case VerdictExternal:
		return "external"
	case VerdictUnresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

// 🔍 ClassifySymlink decides whether the symlink at linkPath points inside
// treeRoot. It returns the verdict together with the absolute target path
// the verdict was computed from (empty for VerdictUnresolvable).
//
// With normalize set, the full link chain is resolved through the filesystem
// before the containment test, so a link reaching outside the tree and back
// in through another link is still classified by its final location. Without
// normalize, only the immediate link target is considered, lexically; the
// target does not need to exist.
func ClassifySymlink(linkPath, treeRoot string, normalize bool) (Verdict, string, error) {
	rootAbs, err := filepath.Abs(treeRoot)
	if err != nil {
		return VerdictUnresolvable, "", errors.Errorf("resolving tree root %q: %w", treeRoot, err)
	}

	if normalize {
		// Resolve both sides through the filesystem so the containment
		// test compares real locations, not link spellings.
		rootResolved, err := filepath.EvalSymlinks(rootAbs)
		if err != nil {
			return VerdictUnresolvable, "", errors.Errorf("resolving tree root %q: %w", rootAbs, err)
		}
		target, err := filepath.EvalSymlinks(linkPath)
		if err != nil {
			if os.IsNotExist(err) {
				return VerdictUnresolvable, "", nil
			}
			return VerdictUnresolvable, "", errors.Errorf("resolving symlink %q: %w", linkPath, err)
		}
		if isWithin(rootResolved, target) {
			return VerdictInternal, target, nil
		}
		return VerdictExternal, target, nil
	}

	target, err := os.Readlink(linkPath)
	if err != nil {
		return VerdictUnresolvable, "", errors.Errorf("reading symlink %q: %w", linkPath, err)
	}
	linkAbs, err := filepath.Abs(linkPath)
	if err != nil {
		return VerdictUnresolvable, "", errors.Errorf("resolving symlink path %q: %w", linkPath, err)
	}
	var targetAbs string
	if filepath.IsAbs(target) {
		targetAbs = filepath.Clean(target)
	} else {
		targetAbs = filepath.Join(filepath.Dir(linkAbs), target)
	}
	if isWithin(rootAbs, targetAbs) {
		return VerdictInternal, targetAbs, nil
	}
	return VerdictExternal, targetAbs, nil
}

// isWithin reports whether path is root or a descendant of root. Both
// arguments must be absolute and cleaned. The comparison is segment-wise,
// not a raw string prefix, so /foo/barbaz is not inside /foo/bar.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
