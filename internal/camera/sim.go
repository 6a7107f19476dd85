package camera

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

// Default simulated device geometry and node values.
const (
	simWidth     = 640
	simHeight    = 480
	simFrameRate = 30.0

	simExposureDefault = 15000.0 // microseconds
	simExposureMin     = 20.0
	simExposureMax     = 30000.0

	simGainMin = 0.0
	simGainMax = 47.994
)

// floatRange bounds a simulated float node.
type floatRange struct {
	min, max float64
}

// SimDriver is a software camera implementing Driver.
//
// It generates flat gray frames at a fixed rate and models the node
// behavior that matters to callers: float nodes clamp to their range
// and every write reads back the stored value, so verification paths
// see the same silent clamping a physical device produces.
type SimDriver struct {
	mu sync.Mutex

	serial      string
	enumerated  bool
	initialized bool
	running     bool

	floats      map[string]float64
	floatRanges map[string]floatRange
	ints        map[string]int64
	bools       map[string]bool
	enums       map[string]string
	enumChoices map[string][]string

	stop chan struct{}
	done chan struct{}
}

// NewSimDriver creates a simulated camera with the given serial.
func NewSimDriver(serial string) *SimDriver {
	return &SimDriver{
		serial: serial,
		floats: map[string]float64{
			"ExposureTime":         simExposureDefault,
			"Gain":                 0,
			"AcquisitionFrameRate": simFrameRate,
		},
		floatRanges: map[string]floatRange{
			"ExposureTime":         {simExposureMin, simExposureMax},
			"Gain":                 {simGainMin, simGainMax},
			"AcquisitionFrameRate": {1, 120},
		},
		ints: map[string]int64{
			"Width":  simWidth,
			"Height": simHeight,
		},
		bools: map[string]bool{
			"AcquisitionFrameRateEnable": true,
		},
		enums: map[string]string{
			"PixelFormat":     "Mono8",
			"ExposureAuto":    "Off",
			"GainAuto":        "Off",
			"AcquisitionMode": "Continuous",
		},
		enumChoices: map[string][]string{
			"PixelFormat":     {"Mono8", "RGB8", "BayerRG8"},
			"ExposureAuto":    {"Off", "Once", "Continuous"},
			"GainAuto":        {"Off", "Once", "Continuous"},
			"AcquisitionMode": {"Continuous", "SingleFrame", "MultiFrame"},
		},
	}
}

// LibraryVersion implements Driver.
func (d *SimDriver) LibraryVersion() string {
	return "sim-1.0.0"
}

// RefreshDeviceList implements Driver. The simulated device appears on
// the first refresh.
func (d *SimDriver) RefreshDeviceList() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enumerated = true
	return nil
}

// SerialNumbers implements Driver.
func (d *SimDriver) SerialNumbers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enumerated {
		return nil
	}
	return []string{d.serial}
}

// InitDevice implements Driver.
func (d *SimDriver) InitDevice(serial string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.enumerated || serial != d.serial {
		return &DriverError{Op: "InitDevice", Err: ErrNotFound}
	}
	d.initialized = true
	return nil
}

// DeinitDevice implements Driver.
func (d *SimDriver) DeinitDevice() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return &DriverError{Op: "DeinitDevice", Err: ErrAcquisitionRunning}
	}
	d.initialized = false
	return nil
}

// StartAcquisition implements Driver.
func (d *SimDriver) StartAcquisition(cb FrameCallback, timeout time.Duration, computeBrightness bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return &DriverError{Op: "StartAcquisition", Err: ErrNotInitialized}
	}
	if d.running {
		return &DriverError{Op: "StartAcquisition", Err: ErrAcquisitionRunning}
	}

	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	go d.generate(cb, computeBrightness, d.stop, d.done)
	return nil
}

// generate produces frames until stop is closed.
func (d *SimDriver) generate(cb FrameCallback, computeBrightness bool, stop, done chan struct{}) {
	defer close(done)

	for {
		d.mu.Lock()
		rate := d.floats["AcquisitionFrameRate"]
		exposure := d.floats["ExposureTime"]
		maxExposure := d.floatRanges["ExposureTime"].max
		gain := d.floats["Gain"]
		format := ParsePixelFormat(d.enums["PixelFormat"])
		width := int(d.ints["Width"])
		height := int(d.ints["Height"])
		d.mu.Unlock()

		if rate <= 0 {
			rate = simFrameRate
		}
		interval := time.Duration(float64(time.Second) / rate)

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}

		stride := width * format.BytesPerPixel()
		data := make([]byte, stride*height)
		for i := range data {
			data[i] = 0x80
		}

		frame := &Frame{
			Data:            data,
			Width:           width,
			Height:          height,
			Stride:          stride,
			PixelFormat:     format,
			Timestamp:       time.Now(),
			ExposureTime:    uint32(exposure),
			MaxExposureTime: uint32(maxExposure),
			Gain:            float32(gain),
		}
		if computeBrightness {
			frame.Brightness = 128.0
		}

		cb(frame)
	}
}

// StopAcquisition implements Driver.
func (d *SimDriver) StopAcquisition() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	stop, done := d.stop, d.done
	d.mu.Unlock()

	close(stop)
	<-done
	return nil
}

// SetEnum implements Driver. Unknown symbolic values leave the node
// unchanged, mirroring a device that rejects the entry.
func (d *SimDriver) SetEnum(node string, value string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.enums[node]
	if !ok {
		return "", &DriverError{Op: "SetEnum", Node: node, Err: errors.New("no such node")}
	}
	for _, choice := range d.enumChoices[node] {
		if choice == value {
			d.enums[node] = value
			return value, nil
		}
	}
	return current, nil
}

// SetFloat implements Driver. Values outside the node's range clamp,
// and the stored (possibly clamped) value is returned.
func (d *SimDriver) SetFloat(node string, value float64) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.floats[node]; !ok {
		return 0, &DriverError{Op: "SetFloat", Node: node, Err: errors.New("no such node")}
	}
	if r, ok := d.floatRanges[node]; ok {
		if value < r.min {
			value = r.min
		}
		if value > r.max {
			value = r.max
		}
	}
	d.floats[node] = value
	return value, nil
}

// SetInt implements Driver.
func (d *SimDriver) SetInt(node string, value int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ints[node]; !ok {
		return 0, &DriverError{Op: "SetInt", Node: node, Err: errors.New("no such node")}
	}
	d.ints[node] = value
	return value, nil
}

// SetBool implements Driver.
func (d *SimDriver) SetBool(node string, value bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.bools[node]; !ok {
		return false, &DriverError{Op: "SetBool", Node: node, Err: errors.New("no such node")}
	}
	d.bools[node] = value
	return value, nil
}

// ReceiveFrameRate implements Driver.
func (d *SimDriver) ReceiveFrameRate() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return 0, &DriverError{Op: "ReceiveFrameRate", Err: ErrNotInitialized}
	}
	return d.floats["AcquisitionFrameRate"], nil
}

// CurrentPixelFormat implements Driver.
func (d *SimDriver) CurrentPixelFormat() (PixelFormat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return FormatInvalid, &DriverError{Op: "CurrentPixelFormat", Err: ErrNotInitialized}
	}
	return ParsePixelFormat(d.enums["PixelFormat"]), nil
}

// NodeMap implements Driver. The dump lists every node and its value,
// one per line.
func (d *SimDriver) NodeMap() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return "", &DriverError{Op: "NodeMap", Err: ErrNotInitialized}
	}

	var sb []byte
	appendLine := func(name, value string) {
		sb = append(sb, name...)
		sb = append(sb, ": "...)
		sb = append(sb, value...)
		sb = append(sb, '\n')
	}
	for name, v := range d.enums {
		appendLine(name, v)
	}
	appendLine("ExposureTime", formatFloat(d.floats["ExposureTime"]))
	appendLine("Gain", formatFloat(d.floats["Gain"]))
	appendLine("AcquisitionFrameRate", formatFloat(d.floats["AcquisitionFrameRate"]))
	return string(sb), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
