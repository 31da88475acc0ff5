//go:generate go run go.uber.org/mock/mockgen -source=download_server.go -destination=mock_downloader_test.go -package=server
package server

import (
	"log/slog"
	"net/http"
	"range-server/domain"
	"range-server/observability"
	"range-server/services"
	"strconv"

	"github.com/google/uuid"
)

type Downloader interface {
	Prepare(request domain.DownloadRequest, cond domain.Conditions) *services.Download
}

// DownloadServer adapts HTTP requests to the download engine.
type DownloadServer struct {
	log        *slog.Logger
	downloader Downloader
	monitoring *observability.MonitoringManager
	iface      domain.Interface
	protocol   string
	inline     bool
}

func NewDownloadServer(
	log *slog.Logger,
	downloader Downloader,
	monitoring *observability.MonitoringManager,
	iface domain.Interface,
	protocol string,
	inline bool,
) *DownloadServer {
	return &DownloadServer{
		log:        log,
		downloader: downloader,
		monitoring: monitoring,
		iface:      iface,
		protocol:   protocol,
		inline:     inline,
	}
}

// Routes registers the download endpoints. GET patterns also match HEAD and
// the mux answers 405 with an Allow header for anything else.
// The catch-all form reads ?file= for gateways mounting the binary under a script path.
func (s *DownloadServer) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files/{name}", s.Download)
	mux.HandleFunc("GET /", s.Download)
	return mux
}

// Download serves the file named by the last path segment, or by the file
// query parameter. The inline query parameter overrides the configured disposition.
func (s *DownloadServer) Download(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	inline := s.inline
	if raw := r.URL.Query().Get("inline"); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			inline = parsed
		}
	}

	filename := r.PathValue("name")
	if filename == "" {
		filename = r.URL.Query().Get("file")
	}

	request := domain.DownloadRequest{Filename: filename, Inline: inline}
	download := s.downloader.Prepare(request, toConditions(r))
	defer func() {
		if err := download.Close(); err != nil {
			s.log.Debug("Unable to close served file", "request_id", requestID, "error", err)
		}
	}()

	header := w.Header()
	for key, values := range download.Header {
		header[key] = values
	}
	header.Set("X-Request-Id", requestID)
	w.WriteHeader(download.Status)

	statusLine := domain.StatusLine(s.iface, r.Proto, s.protocol, download.Status)
	if download.Err != nil {
		s.monitoring.Record(download.Status, 0, false)
		s.log.Info("Download refused",
			"request_id", requestID, "status", statusLine, "file", request.Filename, "error", download.Err)
		return
	}
	if download.Plan == nil || r.Method == http.MethodHead {
		s.monitoring.Record(download.Status, 0, false)
		s.log.Info("Download answered without body",
			"request_id", requestID, "status", statusLine, "file", request.Filename, "method", r.Method)
		return
	}

	written, err := download.StreamTo(r.Context(), w)
	s.monitoring.Record(download.Status, written, err != nil)
	if err != nil {
		s.log.Warn("Download truncated",
			"request_id", requestID, "status", statusLine, "file", download.Meta.Name,
			"written", written, "expected", download.Plan.ContentLength, "error", err)
		return
	}
	s.log.Info("Download served",
		"request_id", requestID, "status", statusLine, "file", download.Meta.Name,
		"plan", download.Plan.Kind.String(), "ranges", len(download.Plan.Ranges),
		"ranges_ignored", download.RangesIgnored, "written", written)
}

func toConditions(r *http.Request) domain.Conditions {
	return domain.Conditions{
		IfNoneMatch:     r.Header.Get("If-None-Match"),
		IfModifiedSince: r.Header.Get("If-Modified-Since"),
		Range:           r.Header.Get("Range"),
		IfRange:         r.Header.Get("If-Range"),
	}
}
