package workers

import (
	"context"
	"fmt"
	"log/slog"
	"range-server/infrastructure/tftp"
)

// TFTPServerWorker runs the read-only TFTP mirror of the download root.
type TFTPServerWorker struct {
	log     *slog.Logger
	address string
	mirror  *tftp.Mirror
}

func NewTFTPServerWorker(log *slog.Logger, address string, mirror *tftp.Mirror) *TFTPServerWorker {
	return &TFTPServerWorker{log: log, address: address, mirror: mirror}
}

// Run builds a new server on each start, a server is not reusable after Shutdown.
func (w *TFTPServerWorker) Run(ctx context.Context) error {
	srv := w.mirror.NewServer()

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting TFTP mirror", "address", w.address)
		errChan <- srv.ListenAndServe(w.address)
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("tftp server error: %w", err)
	case <-ctx.Done():
		srv.Shutdown()
		<-errChan
		return nil
	}
}
