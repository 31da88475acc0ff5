package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrInvalidRequest     = fmt.Errorf("invalid download request")
	ErrConfiguration      = fmt.Errorf("base directory is not a directory")
	ErrNotFound           = fmt.Errorf("file not found")
	ErrPermissionDenied   = fmt.Errorf("file is not readable")
	ErrOpenFailure        = fmt.Errorf("file could not be opened")
	ErrRangeUnsatisfiable = fmt.Errorf("range not satisfiable")
	ErrReadFailure        = fmt.Errorf("file read failed")
	ErrWriteFailure       = fmt.Errorf("transport write failed")
)

// StatusCode maps the taxonomy to the HTTP status that reports it.
// Read and write failures happen after headers are sent and map to 0.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case stderrors.Is(err, ErrRangeUnsatisfiable):
		return http.StatusRequestedRangeNotSatisfiable
	case stderrors.Is(err, ErrReadFailure), stderrors.Is(err, ErrWriteFailure):
		return 0
	default:
		return http.StatusInternalServerError
	}
}
