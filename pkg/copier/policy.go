package copier

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// VCSMetadataDir is the version-control metadata directory recognized at the
// root of a source tree.
const VCSMetadataDir = ".git"

// 🔧 Policy configures a single copy operation. A Policy is immutable for
// the duration of one Copy call.
type Policy struct {
	// NormalizeSymlinks collapses a chain of symlinks to its final
	// resolution before classifying it as internal or external. When unset,
	// only the immediate link target is classified.
	NormalizeSymlinks bool

	// PreserveMetadata attempts to carry timestamps and permission bits
	// over to the destination. Failures to do so never fail the copy.
	PreserveMetadata bool

	// Exclude holds doublestar patterns matched against entry names at the
	// top level of the source tree only. A matching entry is neither
	// recursed into nor created in the destination. Nested entries of the
	// same name are not affected.
	Exclude []string

	// IncludeVCSMetadata copies the version-control metadata directory at
	// the source root even when an Exclude pattern matches it. When unset,
	// the directory is an ordinary entry subject to Exclude.
	IncludeVCSMetadata bool
}

// excluded reports whether a top-level entry name matches one of the
// policy's exclusion patterns.
func (p Policy) excluded(name string) (bool, error) {
	for _, pattern := range p.Exclude {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, errors.Errorf("matching exclude pattern %q: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
