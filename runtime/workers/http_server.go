package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/cgi"
	"net/http/fcgi"
	"range-server/domain"
	"time"
)

// HTTPServerWorker serves the handler on the configured interface.
// With CGI it answers the single request of the process and returns.
type HTTPServerWorker struct {
	log             *slog.Logger
	iface           domain.Interface
	address         string
	handler         http.Handler
	shutdownTimeout time.Duration
}

func NewHTTPServerWorker(
	log *slog.Logger,
	iface domain.Interface,
	address string,
	handler http.Handler,
	shutdownTimeout time.Duration,
) *HTTPServerWorker {
	return &HTTPServerWorker{
		log:             log,
		iface:           iface,
		address:         address,
		handler:         handler,
		shutdownTimeout: shutdownTimeout,
	}
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	switch w.iface {
	case domain.CGI:
		w.log.Debug("Serving CGI request")
		return cgi.Serve(w.handler)
	case domain.FCGI:
		return w.serveFastCGI(ctx)
	default:
		return w.serveHTTP(ctx)
	}
}

func (w *HTTPServerWorker) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              w.address,
		Handler:           w.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting HTTP server", "address", w.address, "at", time.Now().UTC())
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()
	w.log.Info("Shutting down HTTP server gracefully...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (w *HTTPServerWorker) serveFastCGI(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.address, err)
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting FastCGI responder", "address", w.address, "at", time.Now().UTC())
		errChan <- fcgi.Serve(listener, w.handler)
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("fastcgi responder error: %w", err)
	case <-ctx.Done():
		_ = listener.Close()
		<-errChan
		return nil
	}
}
