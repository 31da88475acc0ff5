package observability

import (
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// DownloadStats is a point-in-time view of the served traffic.
type DownloadStats struct {
	Requests    uint64  `json:"requests"`
	FullBodies  uint64  `json:"full_bodies"`
	Partials    uint64  `json:"partials"`
	NotModified uint64  `json:"not_modified"`
	Refused     uint64  `json:"refused"`
	Truncated   uint64  `json:"truncated"`
	BytesSent   uint64  `json:"bytes_sent"`
	SendSpeedMb float64 `json:"send_speed_mb"`
	AllocMemMb  uint64  `json:"alloc_mem_mb"`
	NumGC       uint32  `json:"num_gc"`
}

// MonitoringManager counts download outcomes. Counters are atomic, the
// throughput window is guarded by mu.
type MonitoringManager struct {
	mu          sync.Mutex
	requests    atomic.Uint64
	fullBodies  atomic.Uint64
	partials    atomic.Uint64
	notModified atomic.Uint64
	refused     atomic.Uint64
	truncated   atomic.Uint64
	bytesSent   atomic.Uint64
	windowBytes atomic.Uint64
	lastCheck   time.Time
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{lastCheck: time.Now()}
}

// Record accounts for one answered request.
func (mm *MonitoringManager) Record(status int, written uint64, truncated bool) {
	mm.requests.Add(1)
	mm.bytesSent.Add(written)
	mm.windowBytes.Add(written)

	switch {
	case truncated:
		mm.truncated.Add(1)
	case status == http.StatusOK:
		mm.fullBodies.Add(1)
	case status == http.StatusPartialContent:
		mm.partials.Add(1)
	case status == http.StatusNotModified:
		mm.notModified.Add(1)
	default:
		mm.refused.Add(1)
	}
}

// Snapshot returns the cumulative counters and the send speed in MB/s
// since the previous snapshot.
func (mm *MonitoringManager) Snapshot() DownloadStats {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now()
	stats := DownloadStats{
		Requests:    mm.requests.Load(),
		FullBodies:  mm.fullBodies.Load(),
		Partials:    mm.partials.Load(),
		NotModified: mm.notModified.Load(),
		Refused:     mm.refused.Load(),
		Truncated:   mm.truncated.Load(),
		BytesSent:   mm.bytesSent.Load(),
	}
	windowBytes := mm.windowBytes.Swap(0)
	if duration := now.Sub(mm.lastCheck).Seconds(); duration > 0 {
		stats.SendSpeedMb = (float64(windowBytes) / 1024 / 1024) / duration
	}
	mm.lastCheck = now

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC
	return stats
}
