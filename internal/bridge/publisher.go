package bridge

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/infrastructure/mqtt"
	"github.com/calder-vision/spinbridge/internal/params"
)

// transport is the publishing surface of the MQTT client.
type transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// subscriberPresence answers whether anyone is listening on a stream.
type subscriberPresence interface {
	HasSubscribers(stream string) bool
}

// publisher turns frames into wire messages, gated by subscriber
// presence so unconsumed streams cost nothing to serialize.
type publisher struct {
	client   transport
	presence subscriberPresence
	topics   mqtt.Topics
	camera   string
	frameID  string
	qos      byte
	log      *logging.Logger
	stats    *statCounters

	// session identifies this bridge run in every per-frame message.
	// seq counts frames handed to publishFrame; only the consumer
	// goroutine touches it.
	session string
	seq     uint64

	// calibration is pre-marshalled at startup; nil when no
	// calibration file was configured.
	calibration []byte
}

func newPublisher(client transport, presence subscriberPresence, cameraName, frameID string, qos byte, cal *Calibration, log *logging.Logger, stats *statCounters) (*publisher, error) {
	p := &publisher{
		client:   client,
		presence: presence,
		camera:   cameraName,
		frameID:  frameID,
		qos:      qos,
		log:      log,
		stats:    stats,
		session:  "ses-" + uuid.New().String()[:8],
	}
	if cal != nil {
		data, err := json.Marshal(cal)
		if err != nil {
			return nil, err
		}
		p.calibration = data
	}
	return p, nil
}

// publishFrame emits one frame to whichever streams have subscribers.
//
// The image stream (paired with calibration, when loaded) is built and
// sent only when an image subscriber is present; the published counter
// moves only on a successful image publish. Frames whose pixel format
// has no wire encoding still go out, labelled EncodingInvalid, so
// consumers see the frame flow. The meta stream is independent and
// cheap, sent whenever a meta subscriber exists.
func (p *publisher) publishFrame(frame *camera.Frame) {
	p.seq++
	encoding := frame.PixelFormat.Encoding()

	if p.presence.HasSubscribers(mqtt.StreamImage) {
		if encoding == camera.EncodingInvalid {
			p.log.Warn("unsupported pixel format, publishing with invalid encoding",
				"pixel_format", frame.PixelFormat.String())
		}
		p.publishImage(frame, encoding)
	}

	if p.presence.HasSubscribers(mqtt.StreamMeta) {
		p.publishMeta(frame)
	}
}

func (p *publisher) publishImage(frame *camera.Frame, encoding string) {
	msg := ImageMessage{
		FrameID:   p.frameID,
		SessionID: p.session,
		Seq:       p.seq,
		Timestamp: frame.Timestamp,
		Width:     frame.Width,
		Height:    frame.Height,
		Step:      frame.Stride,
		Encoding:  encoding,
		Data:      frame.Data,
	}

	payload, err := json.Marshal(&msg)
	if err != nil {
		p.log.Error("marshalling image message", "error", err)
		return
	}

	if err := p.client.Publish(p.topics.Image(p.camera), payload, p.qos, false); err != nil {
		p.log.Error("publishing image", "error", err)
		return
	}
	p.stats.addPublished()

	if p.calibration != nil {
		if err := p.client.Publish(p.topics.Calibration(p.camera), p.calibration, p.qos, false); err != nil {
			p.log.Error("publishing calibration", "error", err)
		}
	}
}

func (p *publisher) publishMeta(frame *camera.Frame) {
	msg := MetaMessage{
		FrameID:         p.frameID,
		SessionID:       p.session,
		Seq:             p.seq,
		Timestamp:       frame.Timestamp,
		CameraTime:      frame.Timestamp.UnixNano(),
		Brightness:      frame.Brightness,
		ExposureTime:    frame.ExposureTime,
		MaxExposureTime: frame.MaxExposureTime,
		Gain:            frame.Gain,
	}

	payload, err := json.Marshal(&msg)
	if err != nil {
		p.log.Error("marshalling meta message", "error", err)
		return
	}

	if err := p.client.Publish(p.topics.Meta(p.camera), payload, p.qos, false); err != nil {
		p.log.Error("publishing meta", "error", err)
	}
}

// publishDeclarations retains the list of settable parameters, in
// declaration order, on the declared-settings topic.
func (p *publisher) publishDeclarations(reg *params.Registry) error {
	decls := make([]SettingDeclaration, 0, reg.Len())
	for _, name := range reg.Names() {
		desc, _ := reg.Lookup(name)
		decls = append(decls, SettingDeclaration{
			Name: name,
			Kind: desc.Kind.String(),
		})
	}

	payload, err := json.Marshal(decls)
	if err != nil {
		return err
	}
	return p.client.Publish(p.topics.SettingsDeclared(p.camera), payload, p.qos, true)
}

// publishStatus emits the periodic throughput report.
func (p *publisher) publishStatus(msg *StatusMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("marshalling status message", "error", err)
		return
	}
	if err := p.client.Publish(p.topics.Status(p.camera), payload, p.qos, false); err != nil {
		p.log.Error("publishing status", "error", err)
	}
}

// publishAck emits a settings acknowledgment.
func (p *publisher) publishAck(ack *SettingsAck) {
	payload, err := json.Marshal(ack)
	if err != nil {
		p.log.Error("marshalling settings ack", "error", err)
		return
	}
	if err := p.client.Publish(p.topics.SettingsAck(p.camera), payload, p.qos, false); err != nil {
		p.log.Error("publishing settings ack", "error", err)
	}
}
