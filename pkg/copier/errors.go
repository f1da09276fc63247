package copier

import (
	"fmt"
)

// 🚨 CopyError describes an I/O failure during a tree copy. It carries the
// operation that failed and the path it failed on, so callers can report
// which entry broke the copy.
type CopyError struct {
	Op   string // operation that failed, e.g. "read dir", "copy file"
	Path string // path the operation failed on
	Err  error  // underlying error, may be nil for semantic failures
}

func (e *CopyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

// copyErr wraps an underlying error into a *CopyError.
func copyErr(op, path string, err error) *CopyError {
	return &CopyError{Op: op, Path: path, Err: err}
}
