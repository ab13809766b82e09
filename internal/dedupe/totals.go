package dedupe

import "sync"

// RunTotals accumulates deletion counts across a whole run. It is written
// by the resolution engine and read once at shutdown for the summary, and
// is safe for concurrent use.
type RunTotals struct {
	mu    sync.Mutex
	files int
	bytes int64
}

// Add records one deletion (real or simulated) of the given size.
func (t *RunTotals) Add(sizeBytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files++
	t.bytes += sizeBytes
}

// Files returns the number of deletions recorded so far.
func (t *RunTotals) Files() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.files
}

// Bytes returns the total size of all recorded deletions.
func (t *RunTotals) Bytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bytes
}

// Gigabytes returns the total deleted size in gigabytes, for the summary.
func (t *RunTotals) Gigabytes() float64 {
	return float64(t.Bytes()) / (1024 * 1024 * 1024)
}
