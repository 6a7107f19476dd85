package bridge

import (
	"testing"
	"time"

	"github.com/calder-vision/spinbridge/internal/camera"
)

func testFrame(id byte) *camera.Frame {
	return &camera.Frame{
		Data:        []byte{id},
		Width:       1,
		Height:      1,
		Stride:      1,
		PixelFormat: camera.FormatMono8,
		Timestamp:   time.Now(),
	}
}

func TestFrameQueue_DropsIncomingWhenFull(t *testing.T) {
	q := newFrameQueue()

	f1, f2, f3 := testFrame(1), testFrame(2), testFrame(3)

	if !q.Push(f1) {
		t.Fatal("Push(f1) = false, want true")
	}
	if !q.Push(f2) {
		t.Fatal("Push(f2) = false, want true")
	}
	if q.Push(f3) {
		t.Fatal("Push(f3) = true, want false (queue full)")
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}

	// Newest of the two retained frames comes out first.
	got, ok := q.PopNewest(time.Millisecond, nil)
	if !ok {
		t.Fatal("PopNewest() = false, want frame")
	}
	if got.Data[0] != 2 {
		t.Errorf("PopNewest() = frame %d, want frame 2", got.Data[0])
	}

	got, ok = q.PopNewest(time.Millisecond, nil)
	if !ok {
		t.Fatal("PopNewest() = false, want frame")
	}
	if got.Data[0] != 1 {
		t.Errorf("PopNewest() = frame %d, want frame 1", got.Data[0])
	}
}

func TestFrameQueue_PopTimesOutWhenEmpty(t *testing.T) {
	q := newFrameQueue()

	start := time.Now()
	_, ok := q.PopNewest(20*time.Millisecond, nil)
	if ok {
		t.Fatal("PopNewest() on empty queue returned a frame")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("PopNewest() returned after %v, want a bounded wait", elapsed)
	}
}

func TestFrameQueue_PopWakesOnPush(t *testing.T) {
	q := newFrameQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push(testFrame(7))
	}()

	got, ok := q.PopNewest(time.Second, nil)
	if !ok {
		t.Fatal("PopNewest() = false, want pushed frame")
	}
	if got.Data[0] != 7 {
		t.Errorf("PopNewest() = frame %d, want frame 7", got.Data[0])
	}
}

func TestFrameQueue_PopStopsOnDone(t *testing.T) {
	q := newFrameQueue()
	done := make(chan struct{})

	go func() {
		time.Sleep(5 * time.Millisecond)
		close(done)
	}()

	start := time.Now()
	_, ok := q.PopNewest(time.Minute, done)
	if ok {
		t.Fatal("PopNewest() returned a frame after done closed")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("PopNewest() took %v to observe done", elapsed)
	}
}

func TestFrameQueue_Discard(t *testing.T) {
	q := newFrameQueue()
	q.Push(testFrame(1))
	q.Push(testFrame(2))

	q.Discard()
	if q.Len() != 0 {
		t.Errorf("Len() = %d after Discard, want 0", q.Len())
	}
}
