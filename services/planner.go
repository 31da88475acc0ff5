package services

import (
	"fmt"
	"net/http"
	"range-server/domain"
	"strconv"
	"time"

	"github.com/samber/lo"
)

// PlanResponse picks the response shape for the validated set.
// An empty set means the whole file.
func PlanResponse(meta domain.FileMetadata, set domain.RangeSet, contentType, boundary string) domain.ResponsePlan {
	switch len(set) {
	case 0:
		return domain.ResponsePlan{
			Kind:          domain.FullBody,
			Status:        http.StatusOK,
			Size:          meta.Size,
			ContentType:   contentType,
			ContentLength: meta.Size,
		}
	case 1:
		return domain.ResponsePlan{
			Kind:          domain.SingleRange,
			Status:        http.StatusPartialContent,
			Size:          meta.Size,
			ContentType:   contentType,
			ContentLength: set[0].Length(),
			Ranges:        set,
		}
	default:
		parts := lo.Map(set, func(r domain.RangeSpec, _ int) domain.Part {
			return domain.Part{Range: r, Header: partHeader(boundary, contentType, r, meta.Size)}
		})
		plan := domain.ResponsePlan{
			Kind:        domain.MultipartRanges,
			Status:      http.StatusPartialContent,
			Size:        meta.Size,
			ContentType: fmt.Sprintf("%s; boundary=%s", domain.MultipartByteRange, boundary),
			Ranges:      set,
			Boundary:    boundary,
			Parts:       parts,
		}
		plan.ContentLength = lo.SumBy(parts, func(p domain.Part) uint64 {
			return uint64(len(p.Header)) + p.Range.Length()
		}) + uint64(len(plan.Closing()))
		return plan
	}
}

func partHeader(boundary, contentType string, r domain.RangeSpec, size uint64) string {
	return "\r\n--" + boundary + "\r\n" +
		"Content-Type: " + contentType + "\r\n" +
		"Content-Range: " + r.ContentRange(size) + "\r\n\r\n"
}

// PlanHeader returns the framing headers of a plan.
func PlanHeader(plan domain.ResponsePlan) http.Header {
	header := http.Header{}
	header.Set("Content-Type", plan.ContentType)
	header.Set("Content-Length", strconv.FormatUint(plan.ContentLength, 10))
	if plan.Kind == domain.SingleRange {
		header.Set("Content-Range", plan.Ranges[0].ContentRange(plan.Size))
	}
	return header
}

// CommonHeader holds the headers sent with every 200 and 206.
func CommonHeader(meta domain.FileMetadata, etag domain.ETag, disposition domain.Disposition, now time.Time, expiresIn time.Duration) http.Header {
	header := http.Header{}
	header.Set("Expires", now.Add(expiresIn).UTC().Format(http.TimeFormat))
	header.Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int64(expiresIn/time.Second)))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Transfer-Encoding", "binary")
	header.Set("Content-Disposition", disposition.Header(meta.Name))
	header.Set("Last-Modified", lastModified(meta))
	header.Set("ETag", etag.String())
	return header
}

// UnsatisfiableHeader holds the headers of a 416.
func UnsatisfiableHeader(size uint64) http.Header {
	header := http.Header{}
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Range", "*/"+strconv.FormatUint(size, 10))
	return header
}
