package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"range-server/domain"
	"range-server/errors"
	"sync"

	"golang.org/x/time/rate"
)

// StreamWriter pushes planned bodies to the transport in fixed size chunks,
// flushing after every chunk so memory stays bounded whatever the file size.
type StreamWriter struct {
	chunkSize  int
	limiter    *rate.Limiter
	bufferPool *sync.Pool
}

// NewStreamWriter builds a writer. bytesPerSecond <= 0 disables throttling.
func NewStreamWriter(chunkSize, bytesPerSecond int) *StreamWriter {
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	var limiter *rate.Limiter
	if bytesPerSecond > 0 {
		// Burst must hold a whole chunk or WaitN fails.
		limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), max(bytesPerSecond, chunkSize))
	}
	return &StreamWriter{
		chunkSize: chunkSize,
		limiter:   limiter,
		bufferPool: &sync.Pool{
			New: func() any {
				b := make([]byte, chunkSize)
				return &b
			},
		},
	}
}

// Stream writes the body described by plan, reading from src which must be
// positioned at offset 0. It returns the number of bytes written.
// Any read or write failure stops the stream, headers are already gone by then.
func (s *StreamWriter) Stream(ctx context.Context, w io.Writer, src io.ReadSeeker, plan domain.ResponsePlan) (uint64, error) {
	bufPtr := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(bufPtr)

	out := &flushWriter{w: w}
	if f, ok := w.(http.Flusher); ok {
		out.flusher = f
	}
	cursor := &cursor{src: src}

	switch plan.Kind {
	case domain.FullBody:
		return s.copySpan(ctx, out, cursor, plan.Size, *bufPtr)

	case domain.SingleRange:
		r := plan.Ranges[0]
		if err := cursor.seek(r.First); err != nil {
			return 0, err
		}
		return s.copySpan(ctx, out, cursor, r.Length(), *bufPtr)

	case domain.MultipartRanges:
		var written uint64
		for _, part := range plan.Parts {
			n, err := out.writeString(part.Header)
			written += n
			if err != nil {
				return written, err
			}
			if err := cursor.seek(part.Range.First); err != nil {
				return written, err
			}
			n, err = s.copySpan(ctx, out, cursor, part.Range.Length(), *bufPtr)
			written += n
			if err != nil {
				return written, err
			}
		}
		n, err := out.writeString(plan.Closing())
		written += n
		if err != nil {
			return written, err
		}
		out.flush()
		return written, nil

	default:
		return 0, fmt.Errorf("unknown plan kind %d", plan.Kind)
	}
}

func (s *StreamWriter) copySpan(ctx context.Context, out *flushWriter, src *cursor, length uint64, buf []byte) (uint64, error) {
	var written uint64
	for length > 0 {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("%w: %w", errors.ErrWriteFailure, err)
		}
		size := uint64(len(buf))
		if length < size {
			size = length
		}
		if s.limiter != nil {
			if err := s.limiter.WaitN(ctx, int(size)); err != nil {
				return written, fmt.Errorf("%w: %w", errors.ErrWriteFailure, err)
			}
		}

		n, readErr := src.read(buf[:size])
		if n > 0 {
			w, err := out.write(buf[:n])
			written += w
			if err != nil {
				return written, err
			}
			out.flush()
		}
		if readErr != nil {
			return written, fmt.Errorf("%w after %d bytes: %w", errors.ErrReadFailure, written, readErr)
		}
		length -= size
	}
	return written, nil
}

// cursor tracks the offset so a seek is only issued when the next span does
// not start where the previous one ended.
type cursor struct {
	src    io.ReadSeeker
	offset uint64
}

func (c *cursor) seek(to uint64) error {
	if to == c.offset {
		return nil
	}
	if _, err := c.src.Seek(int64(to), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %w", errors.ErrReadFailure, to, err)
	}
	c.offset = to
	return nil
}

func (c *cursor) read(buf []byte) (int, error) {
	n, err := io.ReadFull(c.src, buf)
	c.offset += uint64(n)
	return n, err
}

type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (f *flushWriter) write(p []byte) (uint64, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return uint64(n), fmt.Errorf("%w: %w", errors.ErrWriteFailure, err)
	}
	return uint64(n), nil
}

func (f *flushWriter) writeString(s string) (uint64, error) {
	return f.write([]byte(s))
}

func (f *flushWriter) flush() {
	if f.flusher != nil {
		f.flusher.Flush()
	}
}
