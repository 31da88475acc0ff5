package mimetypes

import (
	"fmt"
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"
	TextHTML  MIME = "text/html"
	TextCSS   MIME = "text/css"

	ApplicationPDF         MIME = "application/pdf"
	ApplicationJSON        MIME = "application/json"
	ApplicationXML         MIME = "application/xml"
	ApplicationOctetStream MIME = "application/octet-stream"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
)

// sniffLen matches the read limit used by mimetype itself.
const sniffLen = 3072

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// Detector sniffs the content type from the first bytes of a file.
type Detector struct{}

func NewDetector() Detector {
	return Detector{}
}

// Detect reads the head of rs and rewinds it to offset 0 afterwards.
func (Detector) Detect(rs io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("unable to sniff content: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("unable to rewind after sniffing: %w", err)
	}
	return mimetype.Detect(head[:n]).String(), nil
}
