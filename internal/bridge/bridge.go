package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/audit"
	"github.com/calder-vision/spinbridge/internal/infrastructure/config"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/infrastructure/metrics"
	"github.com/calder-vision/spinbridge/internal/infrastructure/mqtt"
	"github.com/calder-vision/spinbridge/internal/params"
)

// consumerWaitTimeout bounds each wait cycle in the publishing loop so
// shutdown is never stuck behind an empty queue.
const consumerWaitTimeout = time.Second

// Bridge connects one camera to the MQTT transport.
//
// It owns the full session: discovery, device init, the handoff queue
// between the acquisition callback and the publishing goroutine, the
// settings and control channels, and the periodic status report.
type Bridge struct {
	cfg     *config.Config
	log     *logging.Logger
	driver  camera.Driver
	client  *mqtt.Client
	metrics *metrics.Client // nil when disabled
	audit   *audit.Store    // nil when disabled

	registry *params.Registry
	applier  *params.Applier
	control  *controlSync
	presence *mqtt.PresenceTracker
	pub      *publisher
	topics   mqtt.Topics

	queue *frameQueue
	stats *statCounters

	mu            sync.Mutex
	cameraRunning bool
	started       bool

	stopCh     chan struct{}
	wg         sync.WaitGroup
	lastStatus time.Time
}

// New creates a Bridge. The metrics client and audit store may be nil
// when those sinks are disabled.
func New(cfg *config.Config, driver camera.Driver, client *mqtt.Client, metricsClient *metrics.Client, auditStore *audit.Store, log *logging.Logger) *Bridge {
	return &Bridge{
		cfg:     cfg,
		log:     log.With("component", "bridge"),
		driver:  driver,
		client:  client,
		metrics: metricsClient,
		audit:   auditStore,
		queue:   newFrameQueue(),
		stats:   &statCounters{},
	}
}

// Start brings the camera session up.
//
// Fatal failures (unreadable parameter file, camera not found after
// all discovery attempts, device init refusal) abort startup with an
// error. A failed acquisition start is not fatal; the bridge stays up
// with its channels live and the status reporter flags the camera as
// offline.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return ErrAlreadyStarted
	}
	b.started = true
	b.mu.Unlock()

	// A failed startup must leave the bridge restartable: clear the
	// started flag on any error return so Stop stays a no-op and a
	// retried Start isn't refused.
	ok := false
	defer func() {
		if !ok {
			b.mu.Lock()
			b.started = false
			b.mu.Unlock()
		}
	}()

	camCfg := b.cfg.Camera

	registry, err := params.Load(camCfg.ParameterFile, b.log)
	if err != nil {
		return fmt.Errorf("loading parameter file: %w", err)
	}
	b.registry = registry
	b.applier = params.NewApplier(b.driver, b.log)

	b.control = newControlSync(registry, b.applier, b.log)
	b.control.record = func(setting, requested, actual string, verified bool) {
		b.recordChange("control", setting, requested, actual, verified)
	}

	cal, err := LoadCalibration(camCfg.CalibrationFile)
	if err != nil {
		b.log.Warn("calibration unavailable", "error", err)
	}

	b.log.Info("camera library", "version", b.driver.LibraryVersion())

	presence, err := b.client.TrackPresence(camCfg.FrameID)
	if err != nil {
		return fmt.Errorf("tracking presence: %w", err)
	}
	b.presence = presence

	qos := byte(b.cfg.MQTT.QoS)
	pub, err := newPublisher(b.client, presence, camCfg.FrameID, camCfg.FrameID, qos, cal, b.log, b.stats)
	if err != nil {
		return fmt.Errorf("building publisher: %w", err)
	}
	b.pub = pub

	if err := camera.Discover(ctx, b.driver, camCfg.SerialNumber,
		camCfg.Discovery.Attempts, b.cfg.GetDiscoveryDelay(), b.log); err != nil {
		return fmt.Errorf("camera discovery: %w", err)
	}

	if err := b.driver.InitDevice(camCfg.SerialNumber); err != nil {
		return fmt.Errorf("initializing camera %s: %w", camCfg.SerialNumber, err)
	}

	if camCfg.DumpNodeMap {
		b.log.Info("dumping node map")
		nm, err := b.driver.NodeMap()
		if err != nil {
			b.log.Warn("node map unavailable", "error", err)
		} else {
			b.log.Info("node map", "nodes", nm)
		}
	}

	if err := b.pub.publishDeclarations(registry); err != nil {
		b.log.Warn("declaring settings", "error", err)
	}

	if err := b.client.Subscribe(b.topics.Control(camCfg.FrameID), qos, b.handleControl); err != nil {
		return fmt.Errorf("subscribing to control topic: %w", err)
	}
	if err := b.client.Subscribe(b.topics.SettingsSet(camCfg.FrameID), qos, b.handleSettings); err != nil {
		return fmt.Errorf("subscribing to settings topic: %w", err)
	}

	b.stopCh = make(chan struct{})
	b.lastStatus = time.Now()

	b.wg.Add(1)
	go b.consume()

	b.startCamera()

	b.wg.Add(1)
	go b.runStatus(b.cfg.GetStatusInterval())

	ok = true
	return nil
}

// startCamera begins acquisition. Failure leaves the bridge up with
// the camera flagged offline.
func (b *Bridge) startCamera() {
	timeout := time.Duration(b.cfg.Camera.AcquisitionTimeout * float64(time.Second))

	err := b.driver.StartAcquisition(b.onFrame, timeout, b.cfg.Camera.ComputeBrightness)
	if err != nil {
		b.log.Error("failed to start camera", "error", err)
		return
	}

	b.mu.Lock()
	b.cameraRunning = true
	b.mu.Unlock()

	if pf, err := b.driver.CurrentPixelFormat(); err == nil {
		b.log.Info("camera streaming", "pixel_format", pf.String())
	}
}

// onFrame receives frames from the acquisition context. It must not
// block; a full queue drops the incoming frame.
func (b *Bridge) onFrame(frame *camera.Frame) {
	if !b.queue.Push(frame) {
		b.stats.addDropped()
	}
}

// consume drains the queue and publishes, newest frame first, until
// stopped. Each empty-queue wait is bounded so the stop flag is
// re-checked at least once per second.
func (b *Bridge) consume() {
	defer b.wg.Done()

	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		frame, ok := b.queue.PopNewest(consumerWaitTimeout, b.stopCh)
		if !ok {
			continue
		}

		select {
		case <-b.stopCh:
			return
		default:
		}

		b.pub.publishFrame(frame)
	}
}

// handleControl parses a control command and forwards it to the
// synchronizer.
func (b *Bridge) handleControl(_ string, payload []byte) error {
	var cmd ControlCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.log.Warn("malformed control payload", "error", err)
		return fmt.Errorf("parsing control command: %w", err)
	}
	b.control.OnControl(cmd.ExposureTime, cmd.Gain)
	return nil
}

// isCameraRunning reports whether acquisition is active.
func (b *Bridge) isCameraRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cameraRunning
}

// Stop tears the session down: acquisition halts, the device is
// released, the goroutines are joined, and any queued frames are
// discarded unpublished.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return nil
	}
	b.started = false
	running := b.cameraRunning
	b.cameraRunning = false
	b.mu.Unlock()

	if running {
		if err := b.driver.StopAcquisition(); err != nil {
			b.log.Warn("stopping acquisition", "error", err)
		}
	}
	if err := b.driver.DeinitDevice(); err != nil {
		b.log.Warn("releasing camera", "error", err)
	}

	if b.stopCh != nil {
		close(b.stopCh)
		b.wg.Wait()
	}
	b.queue.Discard()

	b.log.Info("bridge stopped", "serial", b.cfg.Camera.SerialNumber)
	return nil
}
