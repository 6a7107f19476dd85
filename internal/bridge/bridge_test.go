package bridge

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/config"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/infrastructure/mqtt"
)

func TestBridge_ConsumePublishesNewestFirst(t *testing.T) {
	b, transport, _ := newTestBridge(t, fullRegistry, nil)
	b.pub.presence = &fakePresence{streams: map[string]bool{mqtt.StreamImage: true}}
	b.stopCh = make(chan struct{})

	b.wg.Add(1)
	go b.consume()

	b.onFrame(testFrame(1))

	deadline := time.After(2 * time.Second)
	for len(transport.byTopic("spinbridge/cam0/image")) < 1 {
		select {
		case <-deadline:
			t.Fatal("no image published before deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(b.stopCh)
	b.wg.Wait()

	published, _ := b.stats.snapshotAndReset()
	if published != 1 {
		t.Errorf("published counter = %d, want 1", published)
	}
}

func TestBridge_OnFrameCountsDrops(t *testing.T) {
	b, _, _ := newTestBridge(t, fullRegistry, nil)

	// No consumer running; the third frame overflows the queue.
	b.onFrame(testFrame(1))
	b.onFrame(testFrame(2))
	b.onFrame(testFrame(3))

	_, dropped := b.stats.snapshotAndReset()
	if dropped != 1 {
		t.Errorf("dropped counter = %d, want 1", dropped)
	}
	if b.queue.Len() != 2 {
		t.Errorf("queue depth = %d, want 2", b.queue.Len())
	}
}

func TestBridge_StopBeforeStartIsNoop(t *testing.T) {
	b, _, _ := newTestBridge(t, fullRegistry, nil)

	if err := b.Stop(); err != nil {
		t.Errorf("Stop() on unstarted bridge error = %v, want nil", err)
	}
}

func TestBridge_FailedStartCanBeStoppedAndRetried(t *testing.T) {
	cfg := &config.Config{
		Camera: config.CameraConfig{
			SerialNumber:  "22222222",
			FrameID:       "cam0",
			ParameterFile: filepath.Join(t.TempDir(), "missing.cfg"),
		},
	}
	b := New(cfg, camera.NewSimDriver("22222222"), nil, nil, nil, logging.Default())

	if err := b.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil with missing parameter file, want error")
	}

	// Stop after a failed Start must be a clean no-op, not a panic.
	if err := b.Stop(); err != nil {
		t.Errorf("Stop() after failed Start error = %v, want nil", err)
	}

	// A retried Start must be refused for the real reason, not as a
	// duplicate start.
	err := b.Start(context.Background())
	if err == nil {
		t.Fatal("retried Start() error = nil, want error")
	}
	if errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("retried Start() error = %v, want the startup failure", err)
	}
}

func TestBridge_HandleControlParsesCommand(t *testing.T) {
	b, _, driver := newTestBridge(t, fullRegistry, nil)

	payload := []byte(`{"exposure_time":12000,"gain":6.5}`)
	if err := b.handleControl("spinbridge/cam0/control", payload); err != nil {
		t.Fatalf("handleControl() error = %v", err)
	}
	if driver.floatCalls != 2 {
		t.Errorf("device writes = %d, want 2", driver.floatCalls)
	}

	if err := b.handleControl("spinbridge/cam0/control", []byte(`{broken`)); err == nil {
		t.Error("handleControl() error = nil for malformed payload, want parse error")
	}
}

func TestBridge_HandleControlOmittedGainLeavesGainAlone(t *testing.T) {
	b, _, driver := newTestBridge(t, fullRegistry, nil)

	// No gain field in the payload; only exposure may reach the device.
	payload := []byte(`{"exposure_time":12000}`)
	if err := b.handleControl("spinbridge/cam0/control", payload); err != nil {
		t.Fatalf("handleControl() error = %v", err)
	}
	if driver.floatCalls != 1 {
		t.Errorf("device writes = %d, want 1 (exposure only)", driver.floatCalls)
	}
}
