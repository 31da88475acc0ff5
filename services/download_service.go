package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"range-server/contract"
	"range-server/domain"
	"range-server/errors"
	"range-server/ranges"
	"range-server/storage"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// DownloadService is the range response engine. It holds no per-request
// state, every call works on its own metadata snapshot and file handle.
type DownloadService struct {
	root           billy.Filesystem
	validator      *validator.Validate
	detector       contract.MimeDetector
	writer         *StreamWriter
	expiresIn      time.Duration
	randomBoundary bool
	now            func() time.Time
}

func NewDownloadService(
	root billy.Filesystem,
	detector contract.MimeDetector,
	writer *StreamWriter,
	expiresIn time.Duration,
	randomBoundary bool,
) *DownloadService {
	return &DownloadService{
		root:           root,
		validator:      validator.New(),
		detector:       detector,
		writer:         writer,
		expiresIn:      expiresIn,
		randomBoundary: randomBoundary,
		now:            time.Now,
	}
}

// Download is the outcome of Prepare: what to send and, for 200 and 206,
// the open file the body is streamed from.
type Download struct {
	Status int
	Header http.Header
	// Plan is nil when there is no body to send.
	Plan *domain.ResponsePlan
	Meta domain.FileMetadata
	// Err carries the reason of any status other than 200, 206 and 304.
	Err error
	// RangesIgnored is set when a Range header was dropped because of If-Range.
	RangesIgnored bool

	file   billy.File
	writer *StreamWriter
}

// StreamTo writes the body. It is a no-op when there is no plan.
func (d *Download) StreamTo(ctx context.Context, w io.Writer) (uint64, error) {
	if d.Plan == nil || d.file == nil {
		return 0, nil
	}
	return d.writer.Stream(ctx, w, d.file, *d.Plan)
}

// Close releases the file handle, it is safe to call more than once.
func (d *Download) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func failed(err error) *Download {
	return &Download{Status: errors.StatusCode(err), Header: http.Header{}, Err: err}
}

// Prepare runs resolver, conditional evaluator, range parser and planner in
// that order and stops at the first outcome that has no body.
func (s *DownloadService) Prepare(request domain.DownloadRequest, cond domain.Conditions) *Download {
	if err := s.validator.Struct(request); err != nil {
		return failed(fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err))
	}

	fsys := s.root
	if request.BaseDir != "" {
		resolved, err := storage.ResolveBaseDir(request.BaseDir)
		if err != nil {
			return failed(err)
		}
		fsys = resolved
	}

	meta, err := storage.Resolve(fsys, request.Filename)
	if err != nil {
		return failed(err)
	}
	etag := domain.NewETag(meta)

	if header, ok := NotModified(cond, meta, etag); ok {
		return &Download{Status: http.StatusNotModified, Header: header, Meta: meta}
	}

	file, err := fsys.Open(meta.Name)
	if err != nil {
		return failed(fmt.Errorf("%s: %w: %w", meta.Name, errors.ErrOpenFailure, err))
	}

	contentType, err := s.detector.Detect(file)
	if err != nil {
		_ = file.Close()
		return failed(fmt.Errorf("%s: %w: %w", meta.Name, errors.ErrOpenFailure, err))
	}

	set, hasRanges, err := ranges.Parse(cond.Range, cond.IfRange, etag, meta.Size)
	if err != nil {
		_ = file.Close()
		return &Download{
			Status: http.StatusRequestedRangeNotSatisfiable,
			Header: UnsatisfiableHeader(meta.Size),
			Meta:   meta,
			Err:    err,
		}
	}

	boundary := domain.DefaultBoundary
	if s.randomBoundary {
		boundary = domain.NewRandomBoundary()
	}
	plan := PlanResponse(meta, set, contentType, boundary)

	disposition := lo.Ternary(request.Inline, domain.Inline, domain.Attachment)
	header := CommonHeader(meta, etag, disposition, s.now(), s.expiresIn)
	for key, values := range PlanHeader(plan) {
		header[key] = values
	}

	return &Download{
		Status:        plan.Status,
		Header:        header,
		Plan:          &plan,
		Meta:          meta,
		RangesIgnored: cond.Range != "" && !hasRanges,
		file:          file,
		writer:        s.writer,
	}
}
