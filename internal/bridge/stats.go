package bridge

import "sync"

// statCounters accumulates per-interval publication statistics.
//
// The status reporter snapshots and resets the counters each interval,
// so the numbers are rates over the reporting window, not lifetime
// totals.
type statCounters struct {
	mu        sync.Mutex
	published uint64
	dropped   uint64
}

func (s *statCounters) addPublished() {
	s.mu.Lock()
	s.published++
	s.mu.Unlock()
}

func (s *statCounters) addDropped() {
	s.mu.Lock()
	s.dropped++
	s.mu.Unlock()
}

// snapshotAndReset returns the interval's counts and zeroes them.
func (s *statCounters) snapshotAndReset() (published, dropped uint64) {
	s.mu.Lock()
	published, dropped = s.published, s.dropped
	s.published, s.dropped = 0, 0
	s.mu.Unlock()
	return published, dropped
}
