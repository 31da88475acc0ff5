package domain

import (
	"fmt"
	"time"
)

// DownloadRequest is the invocation contract of the engine.
// Only the basename of Filename is ever used.
type DownloadRequest struct {
	Filename string `validate:"required,max=1024"`
	// BaseDir overrides the configured root when not empty.
	BaseDir string `validate:"max=4096"`
	Inline  bool
}

// Conditions carries the raw conditional and range request headers.
type Conditions struct {
	IfNoneMatch     string
	IfModifiedSince string
	Range           string
	IfRange         string
}

// FileMetadata is the snapshot taken once at request start.
type FileMetadata struct {
	Name     string
	Size     uint64
	Identity uint64
	ModTime  time.Time
}

// MtimeSeconds is the modification time truncated to the second, as used by
// Last-Modified and If-Modified-Since.
func (m FileMetadata) MtimeSeconds() int64 {
	return m.ModTime.Unix()
}

// ETag is the opaque validator, already quoted as it travels on the wire.
type ETag string

// NewETag derives the validator from identity and modification time.
func NewETag(meta FileMetadata) ETag {
	return ETag(fmt.Sprintf(`"%x-%x"`, meta.Identity, uint64(meta.MtimeSeconds())*1_000_000))
}

func (e ETag) String() string {
	return string(e)
}

// Matches is a byte-for-byte comparison, there is no weak comparison.
func (e ETag) Matches(header string) bool {
	return header != "" && header == string(e)
}

type Disposition string

const (
	Inline     Disposition = "inline"
	Attachment Disposition = "attachment"
)

func (d Disposition) Header(name string) string {
	return fmt.Sprintf(`%s; filename="%s"`, d, name)
}

const KB = 1024
const MB = KB * KB

const (
	DefaultChunkSize = 8 * KB
	// DefaultBoundary is shared by every multipart response unless random
	// boundaries are enabled.
	DefaultBoundary    = "D6F92E31D2C135AB"
	DefaultExpiresIn   = 1_728_000 * time.Second
	MultipartByteRange = "multipart/x-byteranges"
)
