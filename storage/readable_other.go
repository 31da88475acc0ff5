//go:build !unix

package storage

import (
	"os"

	"github.com/go-git/go-billy/v5"
)

func readable(fsys billy.Filesystem, name string, _ os.FileInfo) error {
	return probeOpen(fsys, name)
}
