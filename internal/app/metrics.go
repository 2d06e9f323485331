package app

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks frame loop performance. All counters are atomic so
// the input pump can record drops while the loop goroutine records
// frames.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64
	slowFrames   atomic.Uint64

	// Draw timing
	drawCount   atomic.Uint64
	drawTotalNs atomic.Int64

	// Input events dropped by the pump when the loop falls behind
	inputDropped atomic.Uint64

	// Memory, sampled periodically from runtime.MemStats
	lastHeapBytes atomic.Uint64
	lastGCPauseNs atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	// Initialize min to max int64 so the first frame is smaller
	m.frameMinNs.Store(1<<63 - 1)
	return m
}

// RecordFrame records one frame's total duration.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	// Update min (atomic compare-and-swap loop)
	for {
		old := m.frameMinNs.Load()
		if ns >= old {
			break
		}
		if m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.frameMaxNs.Load()
		if ns <= old {
			break
		}
		if m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordSlowFrame records a frame that blew its budget.
func (m *Metrics) RecordSlowFrame() {
	m.slowFrames.Add(1)
}

// RecordDraw records the draw portion of a frame.
func (m *Metrics) RecordDraw(duration time.Duration) {
	m.drawCount.Add(1)
	m.drawTotalNs.Add(duration.Nanoseconds())
}

// RecordInputDropped records an input event dropped by the pump.
func (m *Metrics) RecordInputDropped() {
	m.inputDropped.Add(1)
}

// SampleMemory refreshes the heap figures from the runtime.
func (m *Metrics) SampleMemory() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.lastHeapBytes.Store(ms.HeapAlloc)
	m.lastGCPauseNs.Store(int64(ms.PauseNs[(ms.NumGC+255)%256]))
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	frameCount := m.frameCount.Load()
	drawCount := m.drawCount.Load()

	var avgFrameNs int64
	if frameCount > 0 {
		avgFrameNs = m.frameTotalNs.Load() / int64(frameCount)
	}

	var avgDrawNs int64
	if drawCount > 0 {
		avgDrawNs = m.drawTotalNs.Load() / int64(drawCount)
	}

	minFrameNs := m.frameMinNs.Load()
	if minFrameNs == 1<<63-1 {
		minFrameNs = 0
	}

	return MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		FrameCount:     frameCount,
		AvgFrameTimeNs: avgFrameNs,
		MinFrameTimeNs: minFrameNs,
		MaxFrameTimeNs: m.frameMaxNs.Load(),
		LastFrameNs:    m.lastFrameNs.Load(),
		SlowFrames:     m.slowFrames.Load(),
		InputDropped:   m.inputDropped.Load(),
		DrawCount:      drawCount,
		AvgDrawNs:      avgDrawNs,
		HeapBytes:      m.lastHeapBytes.Load(),
		LastGCPauseNs:  m.lastGCPauseNs.Load(),
	}
}

// Reset clears all counters.
func (m *Metrics) Reset() {
	m.frameCount.Store(0)
	m.frameTotalNs.Store(0)
	m.frameMinNs.Store(1<<63 - 1)
	m.frameMaxNs.Store(0)
	m.lastFrameNs.Store(0)
	m.slowFrames.Store(0)
	m.drawCount.Store(0)
	m.drawTotalNs.Store(0)
	m.inputDropped.Store(0)
	m.lastHeapBytes.Store(0)
	m.lastGCPauseNs.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of the frame counters.
type MetricsSnapshot struct {
	Uptime         time.Duration
	FrameCount     uint64
	AvgFrameTimeNs int64
	MinFrameTimeNs int64
	MaxFrameTimeNs int64
	LastFrameNs    int64
	SlowFrames     uint64
	InputDropped   uint64
	DrawCount      uint64
	AvgDrawNs      int64
	HeapBytes      uint64
	LastGCPauseNs  int64
}

// AvgFPS returns the average frames per second over the whole run.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrameTimeNs == 0 {
		return 0
	}
	return 1e9 / float64(s.AvgFrameTimeNs)
}

// CurrentFPS returns the rate implied by the last frame alone.
func (s MetricsSnapshot) CurrentFPS() float64 {
	if s.LastFrameNs == 0 {
		return 0
	}
	return 1e9 / float64(s.LastFrameNs)
}

// SlowRate returns the percentage of frames that blew their budget.
func (s MetricsSnapshot) SlowRate() float64 {
	if s.FrameCount == 0 {
		return 0
	}
	return float64(s.SlowFrames) / float64(s.FrameCount) * 100
}

// HeapMB returns heap size in megabytes.
func (s MetricsSnapshot) HeapMB() float64 {
	return float64(s.HeapBytes) / (1024 * 1024)
}

// Timer measures elapsed time within a frame.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed().Nanoseconds()) / 1e6
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}

// appMetrics is the process-wide metrics instance.
var (
	appMetrics     *Metrics
	appMetricsOnce sync.Once
)

// GetMetrics returns the process-wide metrics.
func GetMetrics() *Metrics {
	appMetricsOnce.Do(func() {
		if appMetrics == nil {
			appMetrics = NewMetrics()
		}
	})
	return appMetrics
}

// SetMetrics replaces the process-wide metrics.
func SetMetrics(m *Metrics) {
	appMetrics = m
}
