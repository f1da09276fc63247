// Package fileio holds small file read/write helpers used by configuration
// and changelog tooling around collection builds. The copy engine does not
// depend on this package.
package fileio

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔧 CopyOptions tunes CopyFile.
type CopyOptions struct {
	// CheckContent enables the content-equality short-circuit: when the
	// destination already exists with identical content, it is left alone.
	CheckContent bool
	// FileCheckContent is the maximum destination size, in bytes, for which
	// the content check is attempted. Zero disables the check.
	FileCheckContent int64
}

// 📄 CopyFile copies a regular file from srcPath to dstPath. It reports
// whether the destination was actually written; with the content check
// enabled, an up-to-date destination is not rewritten, which keeps mtimes
// stable for build tools that key off them.
func CopyFile(ctx context.Context, srcPath, dstPath string, opts CopyOptions) (bool, error) {
	if opts.CheckContent && opts.FileCheckContent > 0 {
		same, err := destinationUpToDate(srcPath, dstPath, opts.FileCheckContent)
		if err != nil {
			return false, err
		}
		if same {
			zerolog.Ctx(ctx).Debug().Str("from", srcPath).Str("to", dstPath).Msg("destination already up to date")
			return false, nil
		}
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return false, errors.Errorf("opening %q: %w", srcPath, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return false, errors.Errorf("creating %q: %w", dstPath, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, errors.Errorf("copying %q to %q: %w", srcPath, dstPath, err)
	}
	if err := out.Close(); err != nil {
		return false, errors.Errorf("closing %q: %w", dstPath, err)
	}
	return true, nil
}

// destinationUpToDate reports whether dstPath exists, is small enough to be
// worth checking, and hashes identically to srcPath.
func destinationUpToDate(srcPath, dstPath string, limit int64) (bool, error) {
	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Errorf("stating %q: %w", dstPath, err)
	}
	if dstInfo.Size() > limit {
		return false, nil
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, errors.Errorf("stating %q: %w", srcPath, err)
	}
	if srcInfo.Size() != dstInfo.Size() {
		return false, nil
	}
	srcSum, err := Checksum(srcPath)
	if err != nil {
		return false, err
	}
	dstSum, err := Checksum(dstPath)
	if err != nil {
		return false, err
	}
	return srcSum == dstSum, nil
}

// #️⃣ Checksum returns the xxhash-64 digest of the file's content.
func Checksum(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, errors.Errorf("hashing %q: %w", path, err)
	}
	return h.Sum64(), nil
}

// 📝 WriteFile writes content to filename. When fileCheckContent is positive
// and the file already holds exactly this content (and is no larger than the
// limit), nothing is written. Reports whether the file was written.
func WriteFile(ctx context.Context, filename string, content []byte, fileCheckContent int64) (bool, error) {
	if fileCheckContent > 0 && int64(len(content)) <= fileCheckContent {
		info, err := os.Stat(filename)
		if err == nil && info.Size() == int64(len(content)) {
			existing, err := os.ReadFile(filename)
			if err == nil && bytes.Equal(existing, content) {
				zerolog.Ctx(ctx).Debug().Str("path", filename).Msg("file already has desired content")
				return false, nil
			}
		}
	}
	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return false, errors.Errorf("writing %q: %w", filename, err)
	}
	return true, nil
}

// 📖 ReadFile reads the whole file.
func ReadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Errorf("reading %q: %w", filename, err)
	}
	return data, nil
}
