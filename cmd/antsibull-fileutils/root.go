package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/ansible-community/antsibull-fileutils-go/cmd/antsibull-fileutils/opts"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/config"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/log"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	console := log.New(os.Stdout, level)

	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadConfig(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	return &opts.RootOpts{
		Config:  cfg,
		Console: console,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (defaults to ./.antsibull-fileutils*)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
