// Package config holds the tool configuration: copy policy defaults, temp
// dir candidates, and how (or whether) to involve git. The library packages
// do not read configuration themselves; the CLI loads a Config and passes
// the derived policy down.
package config

import (
	"github.com/ansible-community/antsibull-fileutils-go/pkg/copier"
	"gitlab.com/tozd/go/errors"
)

// DefaultExclude is the conventional exclusion set for collection staging:
// VCS metadata directories at the tree root.
var DefaultExclude = []string{".git", ".svn", ".hg"}

// 📚 Config represents the complete tool configuration.
type Config struct {
	// Exclude are doublestar patterns applied to top-level entries of the
	// source tree. Nil means DefaultExclude.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`

	// NormalizeSymlinks resolves symlink chains before classification.
	NormalizeSymlinks bool `json:"normalize_symlinks,omitempty" yaml:"normalize_symlinks,omitempty" hcl:"normalize_symlinks,optional"`

	// PreserveMetadata carries permissions and timestamps over. Nil means
	// true.
	PreserveMetadata *bool `json:"preserve_metadata,omitempty" yaml:"preserve_metadata,omitempty" hcl:"preserve_metadata,optional"`

	// IncludeVCSMetadata copies the .git directory at the source root even
	// when an exclusion pattern matches it.
	IncludeVCSMetadata bool `json:"include_vcs_metadata,omitempty" yaml:"include_vcs_metadata,omitempty" hcl:"include_vcs_metadata,optional"`

	// UseGitCopier copies only git-known files when the source is part of
	// a git repository.
	UseGitCopier bool `json:"use_git_copier,omitempty" yaml:"use_git_copier,omitempty" hcl:"use_git_copier,optional"`

	// TempDirCandidates overrides the candidate bases for staging roots.
	TempDirCandidates []string `json:"tempdir_candidates,omitempty" yaml:"tempdir_candidates,omitempty" hcl:"tempdir_candidates,optional"`

	// CollectionRoots are additional search roots for resolving installed
	// collections.
	CollectionRoots []string `json:"collection_roots,omitempty" yaml:"collection_roots,omitempty" hcl:"collection_roots,optional"`
}

// 🔧 Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{}
}

// ✅ Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.IncludeVCSMetadata && c.UseGitCopier {
		return errors.New("include_vcs_metadata and use_git_copier are mutually exclusive: the git copier never copies the .git directory")
	}
	return nil
}

// 🎯 Policy derives the copy policy this configuration describes.
func (c *Config) Policy() copier.Policy {
	exclude := c.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	preserve := true
	if c.PreserveMetadata != nil {
		preserve = *c.PreserveMetadata
	}
	return copier.Policy{
		NormalizeSymlinks:  c.NormalizeSymlinks,
		PreserveMetadata:   preserve,
		Exclude:            exclude,
		IncludeVCSMetadata: c.IncludeVCSMetadata,
	}
}
