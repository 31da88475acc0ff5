//go:build !unix && !windows

package storage

import (
	"os"

	"github.com/go-git/go-billy/v5"
)

func fileIdentity(_ billy.Filesystem, name string, _ os.FileInfo) uint64 {
	return nameIdentity(name)
}
