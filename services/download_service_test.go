package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"range-server/domain"
	"range-server/domain/mimetypes"
	"range-server/errors"
	"range-server/mocks"
	"range-server/storage"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	fixedMtime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fixedNow   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// newTestService writes data.bin into a temp dir with a fixed mtime.
func newTestService(t *testing.T, content []byte) (*DownloadService, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	require.NoError(t, os.Chtimes(path, fixedMtime, fixedMtime))

	root, err := storage.ResolveBaseDir(dir)
	require.NoError(t, err)

	svc := NewDownloadService(root, mimetypes.NewDetector(), NewStreamWriter(domain.DefaultChunkSize, 0), domain.DefaultExpiresIn, false)
	svc.now = func() time.Time { return fixedNow }
	return svc, dir
}

func body(t *testing.T, d *Download) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := d.StreamTo(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, uint64(buf.Len()), n)
	require.NoError(t, d.Close())
	return buf.Bytes()
}

func etagOf(t *testing.T, svc *DownloadService) string {
	t.Helper()
	d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{})
	require.NoError(t, d.Close())
	return d.Header.Get("ETag")
}

func TestDownloadService_FullBody(t *testing.T) {
	req := require.New(t)
	content := []byte("hello range server")
	svc, _ := newTestService(t, content)

	d := svc.Prepare(domain.DownloadRequest{Filename: "nested/../data.bin"}, domain.Conditions{})
	req.NoError(d.Err)
	req.Equal(http.StatusOK, d.Status)
	req.Equal(domain.FullBody, d.Plan.Kind)

	h := d.Header
	req.Equal(fmt.Sprint(len(content)), h.Get("Content-Length"))
	req.Equal("text/plain; charset=utf-8", h.Get("Content-Type"))
	req.Equal("bytes", h.Get("Accept-Ranges"))
	req.Equal("binary", h.Get("Content-Transfer-Encoding"))
	req.Equal(`attachment; filename="data.bin"`, h.Get("Content-Disposition"))
	req.Equal("Tue, 02 Jan 2024 03:04:05 GMT", h.Get("Last-Modified"))
	req.Equal("Sat, 21 Jun 2025 12:00:00 GMT", h.Get("Expires"))
	req.Equal("private, max-age=1728000", h.Get("Cache-Control"))
	req.Equal(domain.NewETag(d.Meta).String(), h.Get("ETag"))
	req.Empty(h.Get("Content-Range"))

	req.Equal(content, body(t, d))
}

func TestDownloadService_InlineDisposition(t *testing.T) {
	svc, _ := newTestService(t, []byte("abc"))
	d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin", Inline: true}, domain.Conditions{})
	defer d.Close()
	require.Equal(t, `inline; filename="data.bin"`, d.Header.Get("Content-Disposition"))
}

func TestDownloadService_EverySingleRange(t *testing.T) {
	content := []byte("abcdefghij")
	svc, _ := newTestService(t, content)
	size := len(content)

	for a := 0; a < size; a++ {
		for b := a; b < size; b++ {
			t.Run(fmt.Sprintf("%d-%d", a, b), func(t *testing.T) {
				req := require.New(t)
				d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"},
					domain.Conditions{Range: fmt.Sprintf("bytes=%d-%d", a, b)})
				req.Equal(http.StatusPartialContent, d.Status)
				req.Equal(fmt.Sprint(b-a+1), d.Header.Get("Content-Length"))
				req.Equal(fmt.Sprintf("bytes %d-%d/%d", a, b, size), d.Header.Get("Content-Range"))
				req.Equal(content[a:b+1], body(t, d))
			})
		}
	}
}

func TestDownloadService_Multipart(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, []byte("abcde"))

	d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=0-0,2-3"})
	req.Equal(http.StatusPartialContent, d.Status)
	req.Equal("multipart/x-byteranges; boundary=D6F92E31D2C135AB", d.Header.Get("Content-Type"))
	req.Empty(d.Header.Get("Content-Range"))

	want := "\r\n--D6F92E31D2C135AB\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Range: bytes 0-0/5\r\n\r\n" +
		"a" +
		"\r\n--D6F92E31D2C135AB\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Range: bytes 2-3/5\r\n\r\n" +
		"cd" +
		"\r\n--D6F92E31D2C135AB--\r\n"
	req.Equal(fmt.Sprint(len(want)), d.Header.Get("Content-Length"))
	req.Equal(want, string(body(t, d)))
}

func TestDownloadService_MultipartKeepsHeaderOrder(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, []byte("abcde"))

	d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=3-4,0-1,3-4"})
	got := string(body(t, d))
	req.Equal(fmt.Sprint(len(got)), d.Header.Get("Content-Length"))

	var spans []string
	for _, part := range d.Plan.Parts {
		spans = append(spans, part.Range.ContentRange(5))
	}
	req.Equal([]string{"bytes 3-4/5", "bytes 0-1/5", "bytes 3-4/5"}, spans)
	req.Contains(got, "Content-Range: bytes 3-4/5\r\n\r\nde")
	req.Contains(got, "Content-Range: bytes 0-1/5\r\n\r\nab")
}

func TestDownloadService_RandomBoundary(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, []byte("abcde"))
	svc.randomBoundary = true

	first := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=0-0,2-3"})
	second := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=0-0,2-3"})
	defer first.Close()
	defer second.Close()

	req.NotEqual(domain.DefaultBoundary, first.Plan.Boundary)
	req.NotEqual(first.Plan.Boundary, second.Plan.Boundary)
	req.Equal(first.Plan.ContentLength, second.Plan.ContentLength)
}

func TestDownloadService_NotModified(t *testing.T) {
	svc, _ := newTestService(t, []byte("abcde"))
	etag := etagOf(t, svc)

	tests := []struct {
		name       string
		cond       domain.Conditions
		wantHeader string
	}{
		{"If-None-Match", domain.Conditions{IfNoneMatch: etag}, "ETag"},
		{"If-None-Match with a range", domain.Conditions{IfNoneMatch: etag, Range: "bytes=0-0,2-3"}, "ETag"},
		{"If-None-Match with an invalid range", domain.Conditions{IfNoneMatch: etag, Range: "bytes=abc"}, "ETag"},
		{"If-Modified-Since equal", domain.Conditions{IfModifiedSince: "Tue, 02 Jan 2024 03:04:05 GMT"}, "Last-Modified"},
		{"If-Modified-Since later", domain.Conditions{IfModifiedSince: "Wed, 03 Jan 2024 00:00:00 GMT"}, "Last-Modified"},
		{"If-None-Match mismatch falls through", domain.Conditions{IfNoneMatch: `"other"`, IfModifiedSince: "Wed, 03 Jan 2024 00:00:00 GMT"}, "Last-Modified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, tt.cond)
			req.Equal(http.StatusNotModified, d.Status)
			req.NoError(d.Err)
			req.Nil(d.Plan)
			req.Len(d.Header, 1)
			req.NotEmpty(d.Header.Get(tt.wantHeader))
			req.Empty(body(t, d))
		})
	}
}

func TestDownloadService_ModifiedSinceNotSatisfied(t *testing.T) {
	svc, _ := newTestService(t, []byte("abcde"))
	for _, since := range []string{"Mon, 01 Jan 2024 00:00:00 GMT", "not a date"} {
		d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{IfModifiedSince: since})
		require.Equal(t, http.StatusOK, d.Status, since)
		require.NoError(t, d.Close())
	}
}

func TestDownloadService_RangeNotSatisfiable(t *testing.T) {
	svc, _ := newTestService(t, []byte("abcde"))

	for _, header := range []string{"bytes=0-0,abc", "bytes=5-", "bytes=4-2"} {
		t.Run(header, func(t *testing.T) {
			req := require.New(t)
			d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: header})
			req.Equal(http.StatusRequestedRangeNotSatisfiable, d.Status)
			req.ErrorIs(d.Err, errors.ErrRangeUnsatisfiable)
			req.Equal("*/5", d.Header.Get("Content-Range"))
			req.Equal("bytes", d.Header.Get("Accept-Ranges"))
			req.Nil(d.Plan)
			req.Empty(body(t, d))
		})
	}
}

func TestDownloadService_IfRange(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, []byte("abcde"))
	etag := etagOf(t, svc)

	stale := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=1-2", IfRange: `"stale"`})
	req.Equal(http.StatusOK, stale.Status)
	req.True(stale.RangesIgnored)
	req.Equal([]byte("abcde"), body(t, stale))

	fresh := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{Range: "bytes=1-2", IfRange: etag})
	req.Equal(http.StatusPartialContent, fresh.Status)
	req.False(fresh.RangesIgnored)
	req.Equal([]byte("bc"), body(t, fresh))
}

func TestDownloadService_Failures(t *testing.T) {
	svc, dir := newTestService(t, []byte("abcde"))

	tests := []struct {
		name    string
		request domain.DownloadRequest
		status  int
		err     error
	}{
		{"Missing file", domain.DownloadRequest{Filename: "missing.bin"}, http.StatusNotFound, errors.ErrNotFound},
		{"Traversal is reduced to the basename", domain.DownloadRequest{Filename: "../../etc/passwd"}, http.StatusNotFound, errors.ErrNotFound},
		{"Bad base directory", domain.DownloadRequest{Filename: "data.bin", BaseDir: filepath.Join(dir, "data.bin")}, http.StatusInternalServerError, errors.ErrConfiguration},
		{"Empty filename", domain.DownloadRequest{}, http.StatusBadRequest, errors.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			d := svc.Prepare(tt.request, domain.Conditions{})
			req.Equal(tt.status, d.Status)
			req.ErrorIs(d.Err, tt.err)
			req.Nil(d.Plan)
			req.Empty(body(t, d))
		})
	}
}

func TestDownloadService_ExplicitBaseDir(t *testing.T) {
	req := require.New(t)
	svc, _ := newTestService(t, []byte("abcde"))

	other := t.TempDir()
	req.NoError(os.WriteFile(filepath.Join(other, "other.txt"), []byte("xyz"), 0o644))

	d := svc.Prepare(domain.DownloadRequest{Filename: "other.txt", BaseDir: other}, domain.Conditions{})
	req.Equal(http.StatusOK, d.Status)
	req.Equal([]byte("xyz"), body(t, d))
}

func TestDownloadService_DetectorFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTestService(t, []byte("abcde"))
	detector := mocks.NewMockMimeDetector(ctrl)
	detector.EXPECT().Detect(gomock.Any()).Return("", fmt.Errorf("device gone"))
	svc.detector = detector

	d := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{})
	req.Equal(http.StatusInternalServerError, d.Status)
	req.ErrorIs(d.Err, errors.ErrOpenFailure)
	req.NoError(d.Close())
}

func TestDownloadService_Idempotent(t *testing.T) {
	req := require.New(t)
	content := bytes.Repeat([]byte("0123456789"), 3000)
	svc, _ := newTestService(t, content)

	first := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{})
	second := svc.Prepare(domain.DownloadRequest{Filename: "data.bin"}, domain.Conditions{})
	req.Equal(first.Header.Get("ETag"), second.Header.Get("ETag"))

	firstBody := body(t, first)
	req.Equal(content, firstBody)
	req.Equal(firstBody, body(t, second))
	req.NoError(first.Close(), "closing twice is harmless")
}
