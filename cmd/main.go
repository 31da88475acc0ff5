package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"range-server/domain"
	"range-server/domain/mimetypes"
	"range-server/infrastructure/http/server"
	"range-server/infrastructure/tftp"
	"range-server/observability"
	"range-server/runtime/workers"
	"range-server/services"
	"range-server/storage"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the engine and its workers, then blocks until a signal arrives
// or, under CGI, until the single request is answered.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	iface := domain.Interface(config.Interface)
	log := newLogger(iface, config.LogLevel)

	// 2. Engine
	root, err := storage.ResolveBaseDir(config.RootDir)
	if err != nil {
		return fmt.Errorf("base directory %q: %w", config.RootDir, err)
	}
	writer := services.NewStreamWriter(config.ChunkSizeKB*domain.KB, config.RateLimitBytes)
	downloadService := services.NewDownloadService(
		root, mimetypes.NewDetector(), writer, config.ExpiresAfter, config.RandomBoundary,
	)
	monitoring := observability.NewMonitoringManager()
	downloadServer := server.NewDownloadServer(log, downloadService, monitoring, iface, config.Protocol, config.Inline)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewHTTPServerWorker(log, iface, config.Address(), downloadServer.Routes(), config.ShutdownTimeout))
	if iface != domain.CGI {
		if config.HeartbeatInterval > 0 {
			sup.Add(workers.NewHeartbeatWorker(log, config.HeartbeatInterval, monitoring))
		}
		if config.TFTPAddr != "" {
			sup.Add(workers.NewTFTPServerWorker(log, config.TFTPAddr, tftp.NewMirror(log, root)))
		}
	}

	log.Info("Serving downloads", "root", root.Root(), "interface", iface, "protocol", config.Protocol)
	sup.Run(ctx)
	log.Info("Program stopped cleanly")
	return nil
}

// newLogger keeps stdout free under CGI, where it carries the response.
func newLogger(iface domain.Interface, level string) *slog.Logger {
	if iface != domain.CGI {
		return logs.GetLoggerFromString(level)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
