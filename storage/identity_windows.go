//go:build windows

package storage

import (
	"os"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5"
)

// fileIdentity uses the NTFS file index, which survives renames.
func fileIdentity(fsys billy.Filesystem, name string, info os.FileInfo) uint64 {
	if _, ok := info.Sys().(*syscall.Win32FileAttributeData); !ok {
		return nameIdentity(name)
	}

	pathPtr, err := syscall.UTF16PtrFromString(filepath.Join(fsys.Root(), name))
	if err != nil {
		return nameIdentity(name)
	}

	handle, err := syscall.CreateFile(
		pathPtr,
		0,
		syscall.FILE_SHARE_READ|syscall.FILE_SHARE_WRITE|syscall.FILE_SHARE_DELETE,
		nil,
		syscall.OPEN_EXISTING,
		syscall.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		return nameIdentity(name)
	}
	defer syscall.CloseHandle(handle)

	var fileInfo syscall.ByHandleFileInformation
	if err := syscall.GetFileInformationByHandle(handle, &fileInfo); err != nil {
		return nameIdentity(name)
	}
	return uint64(fileInfo.FileIndexHigh)<<32 | uint64(fileInfo.FileIndexLow)
}
