package services

import (
	"net/http"
	"range-server/domain"
	"time"
)

// NotModified evaluates If-None-Match, then If-Modified-Since only when the
// former is absent or does not match. It returns the validator header to send
// along with the 304, or ok=false to proceed.
func NotModified(cond domain.Conditions, meta domain.FileMetadata, etag domain.ETag) (http.Header, bool) {
	if etag.Matches(cond.IfNoneMatch) {
		header := http.Header{}
		header.Set("ETag", etag.String())
		return header, true
	}
	if cond.IfModifiedSince == "" {
		return nil, false
	}
	since, err := http.ParseTime(cond.IfModifiedSince)
	if err != nil {
		return nil, false
	}
	if since.Unix() >= meta.MtimeSeconds() {
		header := http.Header{}
		header.Set("Last-Modified", lastModified(meta))
		return header, true
	}
	return nil, false
}

func lastModified(meta domain.FileMetadata) string {
	return time.Unix(meta.MtimeSeconds(), 0).UTC().Format(http.TimeFormat)
}
