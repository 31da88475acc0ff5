package workers

import (
	"context"
	"log/slog"
	"os"
	"range-server/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker logs the process health (RSS, CPU, open files) and the
// download counters at a fixed interval.
type HeartbeatWorker struct {
	log        *slog.Logger
	interval   time.Duration
	monitoring *observability.MonitoringManager
}

func NewHeartbeatWorker(
	log *slog.Logger,
	interval time.Duration,
	monitoring *observability.MonitoringManager,
) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, interval: interval, monitoring: monitoring}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			downloads := w.monitoring.Snapshot()
			w.log.Info("Heartbeat",
				"pid", p.Pid, "status", stats.status, "rss", stats.rss,
				"cpu_percent", stats.cpu, "open_files", stats.openFiles,
				"requests", downloads.Requests, "partials", downloads.Partials,
				"refused", downloads.Refused, "truncated", downloads.Truncated,
				"bytes_sent", downloads.BytesSent, "send_speed_mb", downloads.SendSpeedMb)
		}
	}
}

type processStats struct {
	rss       uint64
	cpu       float64
	status    string
	openFiles int
}

// selfStats retrieves memory, CPU and OS status for the given process.
// Open files are best effort, not every platform exposes them.
func selfStats(p *process.Process) (processStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return processStats{}, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return processStats{}, err
	}

	status, err := p.Status()
	if err != nil {
		return processStats{}, err
	}

	stats := processStats{rss: memInfo.RSS, cpu: cpuPercent, status: status}
	if files, err := p.OpenFiles(); err == nil {
		stats.openFiles = len(files)
	}
	return stats, nil
}
