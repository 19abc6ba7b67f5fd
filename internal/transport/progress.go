package transport

import "sync"

// inFlightCeiling caps progress until the terminal response arrives.
const inFlightCeiling = 99.9

// Progress is one transfer progress sample.
type Progress struct {
	// Bytes is the acknowledged offset for resumable uploads and the bytes
	// written so far for multipart uploads.
	Bytes      int64
	TotalBytes int64
	Percent    float64
}

// ProgressFunc receives progress samples. It may be called from a goroutine
// owned by the HTTP client.
type ProgressFunc func(Progress)

// tracker enforces monotonic progress in [0,100], reaching 100 only via done.
type tracker struct {
	mu       sync.Mutex
	fn       ProgressFunc
	total    int64
	last     float64
	started  bool
	finished bool
}

func newTracker(total int64, fn ProgressFunc) *tracker {
	return &tracker{fn: fn, total: total}
}

func (t *tracker) report(bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	percent := 0.0
	if t.total > 0 {
		percent = float64(bytes) / float64(t.total) * 100
	}
	if percent > inFlightCeiling {
		percent = inFlightCeiling
	}
	if percent < 0 {
		percent = 0
	}
	if t.started && percent <= t.last {
		return
	}
	t.started = true
	t.last = percent
	if t.fn != nil {
		t.fn(Progress{Bytes: bytes, TotalBytes: t.total, Percent: percent})
	}
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	t.last = 100
	if t.fn != nil {
		t.fn(Progress{Bytes: t.total, TotalBytes: t.total, Percent: 100})
	}
}
