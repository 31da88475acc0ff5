package tftp

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"range-server/errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

// recordingTransfer mimics the outgoing transfer handed to read handlers.
type recordingTransfer struct {
	bytes.Buffer
	size int64
}

func (r *recordingTransfer) SetSize(n int64) {
	r.size = n
}

func (r *recordingTransfer) RemoteAddr() net.UDPAddr {
	return net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 69}
}

func (r *recordingTransfer) ReadFrom(src io.Reader) (int64, error) {
	return r.Buffer.ReadFrom(src)
}

func newMirror(t *testing.T) *Mirror {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "boot.img", []byte("kernel bytes"), 0o644))
	require.NoError(t, fs.MkdirAll("images", 0o755))
	return NewMirror(slog.New(slog.NewTextHandler(io.Discard, nil)), fs)
}

func TestMirror_ReadHandler(t *testing.T) {
	req := require.New(t)
	mirror := newMirror(t)

	transfer := &recordingTransfer{}
	req.NoError(mirror.ReadHandler("pxe/../boot.img", transfer))
	req.Equal("kernel bytes", transfer.String())
	req.Equal(int64(len("kernel bytes")), transfer.size)
}

func TestMirror_ReadHandlerRefusals(t *testing.T) {
	mirror := newMirror(t)

	tests := []struct {
		name     string
		filename string
	}{
		{"Missing file", "missing.img"},
		{"Directory", "images"},
		{"Empty name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			transfer := &recordingTransfer{}
			err := mirror.ReadHandler(tt.filename, transfer)
			req.ErrorIs(err, errors.ErrNotFound)
			req.Zero(transfer.Len())
		})
	}
}
