package bridge

import (
	"sync"
	"time"

	"github.com/calder-vision/spinbridge/internal/camera"
)

// maxQueueDepth bounds the handoff queue. Two slots keep one frame in
// flight while the next lands; anything deeper only adds latency.
const maxQueueDepth = 2

// frameQueue is the bounded handoff between the acquisition callback
// and the publishing goroutine.
//
// Push never blocks: when the queue is full the incoming frame is
// refused, so a slow publisher back-pressures by dropping, never by
// stalling the device's delivery context. PopNewest returns the most
// recently pushed frame first, trading completeness for freshness.
type frameQueue struct {
	mu     sync.Mutex
	frames []*camera.Frame

	// notify wakes a waiting consumer. Buffered so a push while no
	// consumer waits doesn't block.
	notify chan struct{}
}

func newFrameQueue() *frameQueue {
	return &frameQueue{
		frames: make([]*camera.Frame, 0, maxQueueDepth),
		notify: make(chan struct{}, 1),
	}
}

// Push offers a frame from the acquisition context. It reports whether
// the frame was accepted; a false return means the queue was full and
// the frame was dropped.
func (q *frameQueue) Push(f *camera.Frame) bool {
	q.mu.Lock()
	if len(q.frames) >= maxQueueDepth {
		q.mu.Unlock()
		return false
	}
	q.frames = append(q.frames, f)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// PopNewest removes and returns the most recently pushed frame. When
// the queue is empty it waits up to timeout for a push, returning
// (nil, false) on timeout or when done closes. Callers loop and
// re-check their running flag between waits.
func (q *frameQueue) PopNewest(timeout time.Duration, done <-chan struct{}) (*camera.Frame, bool) {
	for {
		q.mu.Lock()
		if n := len(q.frames); n > 0 {
			f := q.frames[n-1]
			q.frames[n-1] = nil
			q.frames = q.frames[:n-1]
			q.mu.Unlock()
			return f, true
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
			// re-check under lock
		case <-done:
			return nil, false
		case <-time.After(timeout):
			return nil, false
		}
	}
}

// Len returns the current queue depth.
func (q *frameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// Discard drops any queued frames. Used at shutdown after the
// consumer has exited.
func (q *frameQueue) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.frames {
		q.frames[i] = nil
	}
	q.frames = q.frames[:0]
}
