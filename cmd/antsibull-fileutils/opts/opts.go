package opts

import (
	"github.com/ansible-community/antsibull-fileutils-go/pkg/config"
	"github.com/ansible-community/antsibull-fileutils-go/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config  *config.Config
	Console *log.Logger
}
