package bridge

import (
	"math"
	"strconv"
	"sync"

	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/params"
)

// GainUnset is the sentinel for "no gain change" in control commands.
// It is the lowest representable float32.
const GainUnset = -math.MaxFloat32

// Logical parameter names the control channel resolves through the
// registry. Both must appear in the parameter file for the channel to
// reach the device.
const (
	controlExposureParam = "exposure_time"
	controlGainParam     = "gain"
)

// controlSync tracks last-applied exposure and gain and writes to the
// device only on change.
//
// Each field is handled independently: a device fault while applying
// exposure is logged and gain is still attempted, and vice versa. A
// field whose logical name is missing from the registry is skipped
// with a warning, never fatally.
//
// Thread Safety:
//   - OnControl serializes commands with an internal mutex and is
//     safe to call concurrently with frame delivery.
type controlSync struct {
	registry *params.Registry
	applier  *params.Applier
	log      *logging.Logger

	// record, when non-nil, receives each applied change for the
	// audit trail.
	record func(setting, requested, actual string, verified bool)

	mu       sync.Mutex
	exposure uint32
	gain     float32
}

func newControlSync(registry *params.Registry, applier *params.Applier, log *logging.Logger) *controlSync {
	return &controlSync{
		registry: registry,
		applier:  applier,
		log:      log,
		exposure: 0,
		gain:     GainUnset,
	}
}

// OnControl applies a control command.
//
// Exposure is applied only when exposureUs is non-zero and differs
// from the last applied value. Gain is applied only when it is above
// the sentinel and differs from the last applied value. State updates
// only after a write the device didn't fault on, so a repeated
// identical command after a successful apply is a no-op.
func (c *controlSync) OnControl(exposureUs uint32, gain float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if exposureUs > 0 && exposureUs != c.exposure {
		if c.applyField(controlExposureParam, float64(exposureUs)) {
			c.exposure = exposureUs
			c.log.Info("changed exposure time", "exposure_us", exposureUs)
		}
	}

	if gain > GainUnset && gain != c.gain {
		if c.applyField(controlGainParam, float64(gain)) {
			c.gain = gain
			c.log.Info("changed gain", "gain_db", gain)
		}
	}
}

// applyField resolves name through the registry and writes value
// straight to the float node, bypassing kind dispatch; the control
// channel's two fields are floats by contract.
// Returns true when the device accepted the write (verified or not).
func (c *controlSync) applyField(name string, value float64) bool {
	desc, ok := c.registry.Lookup(name)
	if !ok {
		c.log.Warn("no node name defined for control field, check parameter file",
			"field", name)
		return false
	}

	actual, verified, err := c.applier.ApplyFloat(desc.Node, value)
	if err != nil {
		c.log.Warn("failed to control",
			"field", name,
			"value", value,
			"error", err)
		return false
	}

	if c.record != nil {
		c.record(name,
			strconv.FormatFloat(value, 'f', -1, 64),
			strconv.FormatFloat(actual, 'f', -1, 64),
			verified)
	}
	return true
}
