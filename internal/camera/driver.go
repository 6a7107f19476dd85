package camera

import (
	"time"
)

// Frame is one acquired image with its acquisition-time metadata.
//
// Data is the raw sensor payload in the frame's PixelFormat. Stride is
// the number of bytes per row, which may exceed Width for aligned
// formats.
type Frame struct {
	Data        []byte
	Width       int
	Height      int
	Stride      int
	PixelFormat PixelFormat
	Timestamp   time.Time

	// Brightness is the mean pixel value, computed by the driver only
	// when requested at start. Zero when not computed.
	Brightness float64

	// ExposureTime is the exposure used for this frame in microseconds.
	ExposureTime uint32

	// MaxExposureTime is the largest exposure the device currently
	// allows, bounded by the frame rate.
	MaxExposureTime uint32

	// Gain is the analog gain used for this frame in dB.
	Gain float32
}

// FrameCallback receives each acquired frame. It is invoked from the
// driver's acquisition goroutine and must not block; hand the frame to
// a queue and return.
type FrameCallback func(frame *Frame)

// Driver abstracts a camera vendor SDK.
//
// Lifecycle: RefreshDeviceList/SerialNumbers to find a device,
// InitDevice to attach, StartAcquisition to begin frame delivery,
// StopAcquisition and DeinitDevice to tear down. Setting writes are
// only valid between InitDevice and DeinitDevice.
//
// Implementations must verify every setting write by reading the value
// back from the device and returning what the device actually took.
type Driver interface {
	// LibraryVersion reports the underlying SDK version string.
	LibraryVersion() string

	// RefreshDeviceList re-enumerates attached cameras.
	RefreshDeviceList() error

	// SerialNumbers returns the serials of all enumerated cameras.
	SerialNumbers() []string

	// InitDevice attaches to the camera with the given serial.
	InitDevice(serial string) error

	// DeinitDevice releases the attached camera.
	DeinitDevice() error

	// StartAcquisition begins frame delivery to cb. timeout bounds how
	// long the driver waits for each frame before reporting an error.
	// computeBrightness asks for per-frame mean brightness.
	StartAcquisition(cb FrameCallback, timeout time.Duration, computeBrightness bool) error

	// StopAcquisition halts frame delivery. Safe to call when stopped.
	StopAcquisition() error

	// SetEnum writes an enumeration node and returns the symbolic
	// value the device reports afterwards.
	SetEnum(node string, value string) (string, error)

	// SetFloat writes a float node and returns the device's value.
	SetFloat(node string, value float64) (float64, error)

	// SetInt writes an integer node and returns the device's value.
	SetInt(node string, value int64) (int64, error)

	// SetBool writes a boolean node and returns the device's value.
	SetBool(node string, value bool) (bool, error)

	// ReceiveFrameRate reports the device-side acquisition rate in Hz.
	ReceiveFrameRate() (float64, error)

	// CurrentPixelFormat reports the device's active pixel format.
	CurrentPixelFormat() (PixelFormat, error)

	// NodeMap renders the device's full node map as text, for
	// diagnostic dumps.
	NodeMap() (string, error)
}
