package commands

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ansible-community/antsibull-fileutils-go/pkg/finder"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/staging"
)

// NewStageCmd creates a new stage command
func NewStageCmd(optsFn OptsFn) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "stage NAMESPACE.NAME [NAMESPACE.NAME...] -- COMMAND [ARGS...]",
		Short: "Run a command against staged collection copies",
		Long: `Stage copies one or more collections into a safely allocated temporary
directory laid out as a collections search path, runs COMMAND with
ANSIBLE_COLLECTIONS_PATH pointing at it, and removes the staging area
afterwards. The staging area is removed on every exit path, so the command
is required: there is nothing to inspect afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "stage").Logger().WithContext(ctx)

			dash := cmd.ArgsLenAtDash()
			if dash < 0 || dash == len(args) {
				return errors.New("a command to run is required after --")
			}
			collections, command := args[:dash], args[dash:]
			if len(collections) == 0 {
				return errors.New("at least one NAMESPACE.NAME collection is required")
			}
			if source != "" && len(collections) > 1 {
				return errors.New("--source can only be combined with a single collection")
			}

			o, err := optsFn(ctx)
			if err != nil {
				return err
			}
			if err := o.Config.Validate(); err != nil {
				return err
			}

			find := finder.New(o.Config.CollectionRoots)

			sessions := make([]staging.Options, len(collections))
			for i, fqcn := range collections {
				namespace, name, err := finder.SplitFQCN(fqcn)
				if err != nil {
					return err
				}
				dir := source
				if dir == "" {
					dir, err = find.Find(ctx, namespace, name)
					if err != nil {
						return err
					}
				}
				sessions[i] = staging.Options{
					SourceDirectory:   dir,
					Namespace:         namespace,
					Name:              name,
					Copier:            pickCopier(ctx, o.Config.UseGitCopier, o.Config.Policy(), dir),
					TempDirCandidates: o.Config.TempDirCandidates,
				}
			}

			// Distinct sessions own distinct staging roots, so staging them
			// concurrently is safe.
			staged := make([]*staging.Staged, len(sessions))
			defer func() {
				for _, s := range staged {
					if s != nil {
						if err := s.Cleanup(); err != nil {
							zerolog.Ctx(ctx).Debug().Err(err).Msg("cannot clean up staging area")
						}
					}
				}
			}()

			g, gctx := errgroup.WithContext(ctx)
			for i, session := range sessions {
				i, session := i, session
				g.Go(func() error {
					s, err := staging.Stage(gctx, session)
					if err != nil {
						return err
					}
					staged[i] = s
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return errors.Errorf("staging collections: %w", err)
			}

			paths := make([]string, len(staged))
			for i, s := range staged {
				paths[i] = filepath.Join(s.RootDir(), "collections")
				o.Console.LogStaging(sessions[i].SourceDirectory, s.CollectionDir())
			}

			run := exec.CommandContext(ctx, command[0], command[1:]...)
			run.Stdin = os.Stdin
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			run.Env = append(os.Environ(),
				"ANSIBLE_COLLECTIONS_PATH="+strings.Join(paths, string(os.PathListSeparator)))
			if err := run.Run(); err != nil {
				return errors.Errorf("running %s: %w", command[0], err)
			}
			o.Console.Success("ran %s against %d staged collection(s)", command[0], len(staged))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "collection checkout to stage instead of resolving an installed one")
	return cmd
}
