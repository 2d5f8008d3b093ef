package profiler

import (
	"log"
	"runtime"
	"time"
)

// ProgressSource reports how far the current image has converged.
// accumulated and target are samples per pixel.
type ProgressSource func() (accumulated, target uint32)

// Snapshot is the set of statistics computed at the end of one update interval.
type Snapshot struct {
	FPS              float64
	Accumulated      uint32
	Target           uint32
	SamplesPerSecond float64
	HeapMB           float64
	SysMB            float64
}

// Converged reports whether the accumulation target has been reached.
//
// Returns:
//   - bool: true once Accumulated reaches a non-zero Target
func (s Snapshot) Converged() bool {
	return s.Target > 0 && s.Accumulated >= s.Target
}

// Percent returns the accumulation progress in [0, 100].
//
// Returns:
//   - float64: the percentage, 0 when there is no target
func (s Snapshot) Percent() float64 {
	if s.Target == 0 {
		return 0
	}
	return min(100, 100*float64(s.Accumulated)/float64(s.Target))
}

// Profiler tracks frame rate, sampling throughput and memory statistics.
// Outputs stats to the log at a fixed interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	progress    ProgressSource
	lastSamples uint32
	lastElapsed time.Duration
	last        Snapshot
}

// NewProfiler creates a new Profiler that reports once per second.
//
// Parameters:
//   - progress: the accumulation progress to report, or nil to report frame rate and memory only
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(progress ProgressSource) *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		progress:       progress,
	}
}

// Tick should be called once per rendered frame.
// Logs statistics when the update interval has elapsed: FPS, accumulated samples and their rate,
// heap usage, allocation rate, GC count and pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	snap, ok := p.tick(time.Now())
	if !ok {
		return false
	}

	// Alloc is live heap; TotalAlloc only grows and measures churn.
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / p.lastElapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	if p.progress != nil {
		log.Printf("[Profiler] FPS: %.2f | Samples: %d/%d (%.1f%%, %.1f spp/s) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			snap.FPS, snap.Accumulated, snap.Target, snap.Percent(), snap.SamplesPerSecond, snap.HeapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, snap.SysMB)
	} else {
		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			snap.FPS, snap.HeapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, snap.SysMB)
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the snapshot of the most recent completed interval.
//
// Returns:
//   - Snapshot: the last statistics, zero before the first interval completes
func (p *Profiler) Last() Snapshot {
	return p.last
}

// tick counts one frame at now and computes a snapshot when the interval has elapsed.
// A restart of accumulation (fewer samples than last time) counts from zero.
func (p *Profiler) tick(now time.Time) (Snapshot, bool) {
	p.frameCount++
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Snapshot{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	snap := Snapshot{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}

	if p.progress != nil {
		snap.Accumulated, snap.Target = p.progress()
		gained := snap.Accumulated
		if snap.Accumulated >= p.lastSamples {
			gained -= p.lastSamples
		}
		snap.SamplesPerSecond = float64(gained) / elapsed.Seconds()
		p.lastSamples = snap.Accumulated
	}

	p.frameCount = 0
	p.lastTime = now
	p.lastElapsed = elapsed
	p.last = snap
	return snap, true
}
