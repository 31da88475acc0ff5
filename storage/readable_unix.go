//go:build unix

package storage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"range-server/errors"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sys/unix"
)

// readable asks the kernel through access(2) when the file lives on the host
// filesystem, and falls back to an open probe otherwise.
func readable(fsys billy.Filesystem, name string, info os.FileInfo) error {
	if _, ok := info.Sys().(*syscall.Stat_t); !ok {
		return probeOpen(fsys, name)
	}
	err := unix.Access(filepath.Join(fsys.Root(), name), unix.R_OK)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, unix.ENOENT):
		return fmt.Errorf("%s: %w", name, errors.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", name, errors.ErrPermissionDenied)
	}
}
