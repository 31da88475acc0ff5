package storage

import (
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"range-server/domain"
	"range-server/errors"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// ResolveBaseDir canonicalises dir and roots a filesystem on it.
// Anything that is not an existing directory is a configuration error.
func ResolveBaseDir(dir string) (billy.Filesystem, error) {
	cleaned := strings.TrimRight(strings.ReplaceAll(dir, `\`, "/"), "/")
	if cleaned == "" {
		if dir == "" {
			return nil, fmt.Errorf("empty base directory: %w", errors.ErrConfiguration)
		}
		cleaned = "/"
	}
	abs, err := filepath.Abs(filepath.FromSlash(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, errors.ErrConfiguration)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, errors.ErrConfiguration)
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, errors.ErrConfiguration)
	}
	return osfs.New(resolved), nil
}

// Basename strips every directory component, whatever the separator.
func Basename(filename string) string {
	name := strings.TrimRight(strings.ReplaceAll(filename, `\`, "/"), "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Resolve stats the sanitised basename of filename inside fsys and takes the
// metadata snapshot used for the whole response.
func Resolve(fsys billy.Filesystem, filename string) (domain.FileMetadata, error) {
	name := Basename(filename)
	if name == "" || name == "." || name == ".." {
		return domain.FileMetadata{}, fmt.Errorf("%q: %w", filename, errors.ErrNotFound)
	}

	info, err := fsys.Stat(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrPermission) {
			return domain.FileMetadata{}, fmt.Errorf("%s: %w", name, errors.ErrPermissionDenied)
		}
		return domain.FileMetadata{}, fmt.Errorf("%s: %w", name, errors.ErrNotFound)
	}
	if !info.Mode().IsRegular() {
		return domain.FileMetadata{}, fmt.Errorf("%s is not a regular file: %w", name, errors.ErrNotFound)
	}
	if err := readable(fsys, name, info); err != nil {
		return domain.FileMetadata{}, err
	}

	return domain.FileMetadata{
		Name:     name,
		Size:     uint64(info.Size()),
		Identity: fileIdentity(fsys, name, info),
		ModTime:  info.ModTime(),
	}, nil
}

// probeOpen checks readability by opening and closing the file.
func probeOpen(fsys billy.Filesystem, name string) error {
	f, err := fsys.Open(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, errors.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", name, errors.ErrPermissionDenied)
	}
	return f.Close()
}

// nameIdentity is used when the filesystem exposes no OS level file id.
func nameIdentity(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}
