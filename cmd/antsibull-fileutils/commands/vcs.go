package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/vcs"
)

// NewVCSCmd creates the vcs command group
func NewVCSCmd(optsFn OptsFn) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcs",
		Short: "Inspect version-control state of a source tree",
	}
	cmd.AddCommand(newVCSDetectCmd(optsFn))
	cmd.AddCommand(newVCSLsFilesCmd(optsFn))
	return cmd
}

func newVCSDetectCmd(optsFn OptsFn) *cobra.Command {
	return &cobra.Command{
		Use:   "detect PATH",
		Short: "Report which version-control system tracks PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "vcs detect").Logger().WithContext(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), vcs.Detect(ctx, args[0]))
			return nil
		},
	}
}

func newVCSLsFilesCmd(optsFn OptsFn) *cobra.Command {
	return &cobra.Command{
		Use:   "ls-files PATH",
		Short: "List the files git knows about under PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "vcs ls-files").Logger().WithContext(ctx)

			files, err := vcs.ListGitFiles(ctx, args[0])
			if err != nil {
				return errors.Errorf("listing files in %s: %w", args[0], err)
			}
			for _, file := range files {
				fmt.Fprintln(cmd.OutOrStdout(), file)
			}
			return nil
		},
	}
}
