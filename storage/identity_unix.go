//go:build unix

package storage

import (
	"os"
	"syscall"

	"github.com/go-git/go-billy/v5"
)

// fileIdentity returns the inode on Unix-like systems
// (Linux, macOS, BSD, etc.)
func fileIdentity(_ billy.Filesystem, name string, info os.FileInfo) uint64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nameIdentity(name)
	}
	return uint64(stat.Ino)
}
