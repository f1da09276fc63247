package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ansible-community/antsibull-fileutils-go/cmd/antsibull-fileutils/opts"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/copier"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/staging"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/vcs"
)

// OptsFn builds the shared command options once flags are parsed.
type OptsFn = func(ctx context.Context) (*opts.RootOpts, error)

// NewCopyCmd creates a new copy command
func NewCopyCmd(optsFn OptsFn) *cobra.Command {
	var (
		exclude      []string
		normalize    bool
		noMetadata   bool
		includeVCS   bool
		useGitCopier bool
	)

	cmd := &cobra.Command{
		Use:   "copy SOURCE DESTINATION",
		Short: "Copy a directory tree",
		Long: `Copy reproduces a source tree in a destination directory. The destination
must not exist yet (or be an empty directory). Top-level entries matching
an exclusion pattern are skipped; symlinks staying inside the tree are
recreated as symlinks, symlinks leaving it are copied as content.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "copy").Logger().WithContext(ctx)

			o, err := optsFn(ctx)
			if err != nil {
				return err
			}

			cfg := o.Config
			if cmd.Flags().Changed("exclude") {
				cfg.Exclude = exclude
			}
			if normalize {
				cfg.NormalizeSymlinks = true
			}
			if noMetadata {
				preserve := false
				cfg.PreserveMetadata = &preserve
			}
			if includeVCS {
				cfg.IncludeVCSMetadata = true
			}
			if useGitCopier {
				cfg.UseGitCopier = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			src, dst := args[0], args[1]
			if err := pickCopier(ctx, cfg.UseGitCopier, cfg.Policy(), src).Copy(ctx, src, dst); err != nil {
				o.Console.Error("copy failed: %v", err)
				return errors.Errorf("copying %s to %s: %w", src, dst, err)
			}
			o.Console.Success("copied %s to %s", src, dst)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "top-level entry patterns to exclude (overrides config)")
	cmd.Flags().BoolVar(&normalize, "normalize-symlinks", false, "resolve symlink chains before classification")
	cmd.Flags().BoolVar(&noMetadata, "no-preserve-metadata", false, "do not copy permissions and timestamps")
	cmd.Flags().BoolVar(&includeVCS, "include-vcs", false, "copy the .git directory even when excluded")
	cmd.Flags().BoolVar(&useGitCopier, "git", false, "copy only files known to git")
	return cmd
}

// pickCopier selects the git-aware copier when requested and the source is
// actually part of a git repository.
func pickCopier(ctx context.Context, useGit bool, policy copier.Policy, src string) staging.TreeCopier {
	if useGit && vcs.Detect(ctx, src) == vcs.KindGit {
		return copier.NewGitCopier()
	}
	return copier.New(policy)
}
