package bridge

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/infrastructure/mqtt"
)

func newTestPublisher(t *testing.T, streams map[string]bool, cal *Calibration) (*publisher, *fakeTransport, *statCounters) {
	t.Helper()
	transport := &fakeTransport{}
	stats := &statCounters{}
	pub, err := newPublisher(transport, &fakePresence{streams: streams}, "cam0", "cam0", 0, cal, logging.Default(), stats)
	if err != nil {
		t.Fatalf("newPublisher() error = %v", err)
	}
	return pub, transport, stats
}

func TestPublisher_NoSubscribersPublishesNothing(t *testing.T) {
	pub, transport, stats := newTestPublisher(t, nil, nil)

	pub.publishFrame(testFrame(1))

	if len(transport.messages) != 0 {
		t.Errorf("published %d messages with no subscribers, want 0", len(transport.messages))
	}
	published, _ := stats.snapshotAndReset()
	if published != 0 {
		t.Errorf("published counter = %d, want 0", published)
	}
}

func TestPublisher_ImageStream(t *testing.T) {
	cal := &Calibration{CameraName: "cam0", ImageWidth: 1, ImageHeight: 1}
	pub, transport, stats := newTestPublisher(t, map[string]bool{mqtt.StreamImage: true}, cal)

	frame := testFrame(9)
	pub.publishFrame(frame)

	images := transport.byTopic("spinbridge/cam0/image")
	if len(images) != 1 {
		t.Fatalf("image messages = %d, want 1", len(images))
	}

	var msg ImageMessage
	if err := json.Unmarshal(images[0], &msg); err != nil {
		t.Fatalf("unmarshalling image: %v", err)
	}
	if msg.Encoding != "mono8" {
		t.Errorf("Encoding = %q, want \"mono8\"", msg.Encoding)
	}
	if !bytes.Equal(msg.Data, frame.Data) {
		t.Error("image data does not round-trip")
	}
	if msg.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if msg.Seq != 1 {
		t.Errorf("Seq = %d, want 1", msg.Seq)
	}

	// Calibration rides along with each image.
	if got := len(transport.byTopic("spinbridge/cam0/calibration")); got != 1 {
		t.Errorf("calibration messages = %d, want 1", got)
	}

	published, _ := stats.snapshotAndReset()
	if published != 1 {
		t.Errorf("published counter = %d, want 1", published)
	}
}

func TestPublisher_MetaIndependentOfImage(t *testing.T) {
	pub, transport, stats := newTestPublisher(t, map[string]bool{mqtt.StreamMeta: true}, nil)

	frame := testFrame(3)
	frame.ExposureTime = 15000
	frame.Gain = 4.5
	pub.publishFrame(frame)

	if got := len(transport.byTopic("spinbridge/cam0/image")); got != 0 {
		t.Errorf("image messages = %d, want 0", got)
	}

	metas := transport.byTopic("spinbridge/cam0/meta")
	if len(metas) != 1 {
		t.Fatalf("meta messages = %d, want 1", len(metas))
	}
	var meta MetaMessage
	if err := json.Unmarshal(metas[0], &meta); err != nil {
		t.Fatalf("unmarshalling meta: %v", err)
	}
	if meta.ExposureTime != 15000 {
		t.Errorf("ExposureTime = %d, want 15000", meta.ExposureTime)
	}

	// Meta alone does not count as a published frame.
	published, _ := stats.snapshotAndReset()
	if published != 0 {
		t.Errorf("published counter = %d, want 0", published)
	}
}

func TestPublisher_InvalidFormatStillEmitsImage(t *testing.T) {
	pub, transport, stats := newTestPublisher(t,
		map[string]bool{mqtt.StreamImage: true, mqtt.StreamMeta: true}, nil)

	frame := testFrame(1)
	frame.PixelFormat = camera.FormatInvalid
	pub.publishFrame(frame)

	images := transport.byTopic("spinbridge/cam0/image")
	if len(images) != 1 {
		t.Fatalf("image messages = %d for invalid format, want 1", len(images))
	}
	var msg ImageMessage
	if err := json.Unmarshal(images[0], &msg); err != nil {
		t.Fatalf("unmarshalling image: %v", err)
	}
	if msg.Encoding != camera.EncodingInvalid {
		t.Errorf("Encoding = %q, want %q", msg.Encoding, camera.EncodingInvalid)
	}
	if got := len(transport.byTopic("spinbridge/cam0/meta")); got != 1 {
		t.Errorf("meta messages = %d, want 1", got)
	}

	published, _ := stats.snapshotAndReset()
	if published != 1 {
		t.Errorf("published counter = %d, want 1", published)
	}
}

func TestPublisher_DeclaresSettingsRetained(t *testing.T) {
	pub, transport, _ := newTestPublisher(t, nil, nil)
	reg := loadTestRegistry(t, fullRegistry)

	if err := pub.publishDeclarations(reg); err != nil {
		t.Fatalf("publishDeclarations() error = %v", err)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if len(transport.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(transport.messages))
	}
	msg := transport.messages[0]
	if msg.topic != "spinbridge/cam0/settings/declared" {
		t.Errorf("topic = %q, want declared-settings topic", msg.topic)
	}
	if !msg.retained {
		t.Error("declaration not retained")
	}

	var decls []SettingDeclaration
	if err := json.Unmarshal(msg.payload, &decls); err != nil {
		t.Fatalf("unmarshalling declarations: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("declared %d settings, want 2", len(decls))
	}
	if decls[0].Name != "exposure_time" || decls[0].Kind != "float" {
		t.Errorf("first declaration = %+v, want exposure_time/float", decls[0])
	}
	if decls[1].Name != "gain" {
		t.Errorf("second declaration = %+v, want gain", decls[1])
	}
}

func TestBridge_StatusReport(t *testing.T) {
	b, transport, _ := newTestBridge(t, fullRegistry, nil)
	b.cameraRunning = true
	b.stopCh = make(chan struct{})

	// Simulate an interval: 10 published, 2 dropped.
	for i := 0; i < 10; i++ {
		b.stats.addPublished()
	}
	b.stats.addDropped()
	b.stats.addDropped()

	b.reportStatus()

	statuses := transport.byTopic("spinbridge/cam0/status")
	if len(statuses) != 1 {
		t.Fatalf("status messages = %d, want 1", len(statuses))
	}
	var msg StatusMessage
	if err := json.Unmarshal(statuses[0], &msg); err != nil {
		t.Fatalf("unmarshalling status: %v", err)
	}
	if msg.Published != 10 || msg.Dropped != 2 {
		t.Errorf("counts = %d/%d, want 10/2", msg.Published, msg.Dropped)
	}
	if msg.DropRate != 0.2 {
		t.Errorf("DropRate = %v, want 0.2", msg.DropRate)
	}
	if msg.RateOutHz <= 0 {
		t.Errorf("RateOutHz = %v, want > 0", msg.RateOutHz)
	}

	// Counters reset after the report.
	published, dropped := b.stats.snapshotAndReset()
	if published != 0 || dropped != 0 {
		t.Errorf("counters after report = %d/%d, want 0/0", published, dropped)
	}
}

func TestBridge_StatusDropRateZeroWhenNothingPublished(t *testing.T) {
	b, transport, _ := newTestBridge(t, fullRegistry, nil)
	b.cameraRunning = true
	b.stopCh = make(chan struct{})

	b.stats.addDropped()
	b.reportStatus()

	statuses := transport.byTopic("spinbridge/cam0/status")
	if len(statuses) != 1 {
		t.Fatalf("status messages = %d, want 1", len(statuses))
	}
	var msg StatusMessage
	if err := json.Unmarshal(statuses[0], &msg); err != nil {
		t.Fatalf("unmarshalling status: %v", err)
	}
	if msg.DropRate != 0 {
		t.Errorf("DropRate = %v, want 0 when nothing published", msg.DropRate)
	}
}

func TestBridge_StatusSkippedWhenOffline(t *testing.T) {
	b, transport, _ := newTestBridge(t, fullRegistry, nil)
	b.cameraRunning = false

	b.reportStatus()

	if got := len(transport.byTopic("spinbridge/cam0/status")); got != 0 {
		t.Errorf("status messages = %d for offline camera, want 0", got)
	}
}
