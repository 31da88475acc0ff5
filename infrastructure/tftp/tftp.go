package tftp

import (
	"fmt"
	"io"
	"log/slog"
	"range-server/errors"
	"range-server/storage"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	tftp "github.com/pin/tftp/v3"
)

const transferTimeout = 5 * time.Second

// Mirror exposes the download root over TFTP, read only.
// Names are resolved exactly like HTTP downloads: basename only, regular
// readable files only.
type Mirror struct {
	log  *slog.Logger
	root billy.Filesystem
}

func NewMirror(log *slog.Logger, root billy.Filesystem) *Mirror {
	return &Mirror{log: log, root: root}
}

// ReadHandler streams the whole file to rf, announcing its size when the
// client negotiated tsize.
func (m *Mirror) ReadHandler(filename string, rf io.ReaderFrom) error {
	meta, err := storage.Resolve(m.root, strings.TrimSpace(filename))
	if err != nil {
		m.log.Info("TFTP read refused", "file", filename, "error", err)
		return err
	}

	file, err := m.root.Open(meta.Name)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrOpenFailure, err)
	}
	defer file.Close()

	remote := ""
	if transfer, ok := rf.(tftp.OutgoingTransfer); ok {
		transfer.SetSize(int64(meta.Size))
		addr := transfer.RemoteAddr()
		remote = addr.String()
	}

	n, err := rf.ReadFrom(file)
	if err != nil {
		m.log.Warn("TFTP transfer truncated", "file", meta.Name, "remote", remote, "written", n, "error", err)
		return err
	}
	m.log.Info("TFTP transfer done", "file", meta.Name, "remote", remote, "written", n)
	return nil
}

// NewServer builds a fresh server, write requests are rejected.
func (m *Mirror) NewServer() *tftp.Server {
	srv := tftp.NewServer(m.ReadHandler, nil)
	srv.SetTimeout(transferTimeout)
	return srv
}
