package lead

import (
	"sync"
	"time"
)

// VelocityTracker records per-IP submission times so repeat submissions can
// be flagged in the audit record.
type VelocityTracker interface {
	RecordSubmission(ip string, timestamp time.Time)
	LastSubmission(ip string) (time.Time, bool)
}

// MemoryVelocityTracker implements VelocityTracker in memory. A multi-node
// deployment would back this with Redis instead.
type MemoryVelocityTracker struct {
	mu   sync.RWMutex
	last map[string]time.Time
}

func NewMemoryVelocityTracker() *MemoryVelocityTracker {
	return &MemoryVelocityTracker{last: make(map[string]time.Time)}
}

func (t *MemoryVelocityTracker) RecordSubmission(ip string, timestamp time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[ip] = timestamp
}

func (t *MemoryVelocityTracker) LastSubmission(ip string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ts, ok := t.last[ip]
	return ts, ok
}

// RepeatInterval returns milliseconds since the previous submission from ip
// and records the current one. Zero with ok=false means first sighting.
func RepeatInterval(tracker VelocityTracker, ip string, now time.Time) (float64, bool) {
	prev, ok := tracker.LastSubmission(ip)
	tracker.RecordSubmission(ip, now)
	if !ok {
		return 0, false
	}
	return float64(now.Sub(prev).Nanoseconds()) / 1e6, true
}
