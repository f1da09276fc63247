package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ansible-community/antsibull-fileutils-go/cmd/antsibull-fileutils/commands"
)

func main() {
	root := &cobra.Command{
		Use:   "antsibull-fileutils",
		Short: "Stage and copy collection directory trees",
		Long: `antsibull-fileutils copies collection source trees, either directly or
into a safely allocated temporary staging area that is cleaned up again
when the command finishes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	addRootFlags(root)

	root.AddCommand(commands.NewCopyCmd(newRootOpts))
	root.AddCommand(commands.NewStageCmd(newRootOpts))
	root.AddCommand(commands.NewVCSCmd(newRootOpts))
	root.AddCommand(newVersionCmd())

	ctx := context.Background()
	if err := root.ExecuteContext(ctx); err != nil {
		logger := zerolog.Ctx(ctx)
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
