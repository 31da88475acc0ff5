package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"range-server/domain"
	"range-server/errors"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

type deniedFS struct {
	billy.Filesystem
}

func (d deniedFS) Open(name string) (billy.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"a/b/report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\win.ini`, "win.ini"},
		{"dir/", "dir"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Basename(tt.in))
		})
	}
}

func TestResolveBaseDir(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	fsys, err := ResolveBaseDir(dir)
	req.NoError(err)
	resolved, err := filepath.EvalSymlinks(dir)
	req.NoError(err)
	req.Equal(resolved, fsys.Root())

	_, err = ResolveBaseDir(dir + "/")
	req.NoError(err, "trailing separator is tolerated")

	file := filepath.Join(dir, "plain.txt")
	req.NoError(os.WriteFile(file, []byte("x"), 0o644))
	_, err = ResolveBaseDir(file)
	req.ErrorIs(err, errors.ErrConfiguration)

	_, err = ResolveBaseDir(filepath.Join(dir, "missing"))
	req.ErrorIs(err, errors.ErrConfiguration)

	_, err = ResolveBaseDir("")
	req.ErrorIs(err, errors.ErrConfiguration)
}

func TestResolve_MemoryFilesystem(t *testing.T) {
	req := require.New(t)
	fsys := memfs.New()
	req.NoError(util.WriteFile(fsys, "hello.txt", []byte("hello"), 0o644))
	req.NoError(fsys.MkdirAll("sub", 0o755))

	meta, err := Resolve(fsys, "some/where/hello.txt")
	req.NoError(err)
	req.Equal("hello.txt", meta.Name)
	req.Equal(uint64(5), meta.Size)
	req.Equal(nameIdentity("hello.txt"), meta.Identity)

	_, err = Resolve(fsys, "missing.txt")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = Resolve(fsys, "../../../hello.txt/..")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = Resolve(fsys, "sub")
	req.ErrorIs(err, errors.ErrNotFound, "directories are never served")

	_, err = Resolve(deniedFS{fsys}, "hello.txt")
	req.ErrorIs(err, errors.ErrPermissionDenied)
}

func TestResolve_OSFilesystem(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	req.NoError(os.WriteFile(path, []byte("0123456789"), 0o644))

	fsys, err := ResolveBaseDir(dir)
	req.NoError(err)

	first, err := Resolve(fsys, "data.bin")
	req.NoError(err)
	second, err := Resolve(fsys, "data.bin")
	req.NoError(err)
	req.Equal(uint64(10), first.Size)
	req.Equal(domain.NewETag(first), domain.NewETag(second), "unchanged file keeps its validator")

	later := first.ModTime.Add(time.Hour)
	req.NoError(os.Chtimes(path, later, later))
	touched, err := Resolve(fsys, "data.bin")
	req.NoError(err)
	req.Equal(first.Identity, touched.Identity)
	req.NotEqual(domain.NewETag(first), domain.NewETag(touched), "validator follows mtime")
}
