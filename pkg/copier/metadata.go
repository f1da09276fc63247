package copier

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

// 🕰️ preserveMetadata carries permission bits and timestamps from srcPath
// over to dstPath. It is strictly best-effort: the underlying filesystem may
// not support every attribute, and a staged copy is usable regardless of
// metadata fidelity, so failures are logged at debug level and swallowed.
func preserveMetadata(ctx context.Context, srcPath, dstPath string) {
	logger := zerolog.Ctx(ctx)

	info, err := os.Stat(srcPath)
	if err != nil {
		logger.Debug().Str("path", srcPath).Err(err).Msg("cannot stat source for metadata preservation")
		return
	}

	if err := os.Chmod(dstPath, info.Mode().Perm()); err != nil {
		logger.Debug().Str("path", dstPath).Err(err).Msg("cannot preserve permissions")
	}

	// Access time is not tracked portably; reusing the modification time
	// keeps both fields deterministic.
	mtime := info.ModTime()
	if err := os.Chtimes(dstPath, mtime, mtime); err != nil {
		logger.Debug().Str("path", dstPath).Err(err).Msg("cannot preserve timestamps")
	}
}
