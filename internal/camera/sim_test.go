package camera

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func initedSim(t *testing.T) *SimDriver {
	t.Helper()
	d := NewSimDriver("22222222")
	if err := d.RefreshDeviceList(); err != nil {
		t.Fatalf("RefreshDeviceList() error = %v", err)
	}
	if err := d.InitDevice("22222222"); err != nil {
		t.Fatalf("InitDevice() error = %v", err)
	}
	return d
}

func TestSimDriver_SetFloatClamps(t *testing.T) {
	d := initedSim(t)

	tests := []struct {
		name  string
		node  string
		value float64
		want  float64
	}{
		{"in range", "ExposureTime", 10000, 10000},
		{"above max", "ExposureTime", 50000, 30000},
		{"below min", "ExposureTime", 1, 20},
		{"gain above max", "Gain", 100, 47.994},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.SetFloat(tt.node, tt.value)
			if err != nil {
				t.Fatalf("SetFloat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SetFloat(%s, %v) = %v, want %v", tt.node, tt.value, got, tt.want)
			}
		})
	}
}

func TestSimDriver_SetFloatUnknownNode(t *testing.T) {
	d := initedSim(t)

	_, err := d.SetFloat("NoSuchNode", 1)
	var derr *DriverError
	if !errors.As(err, &derr) {
		t.Fatalf("SetFloat() error = %v, want *DriverError", err)
	}
	if derr.Node != "NoSuchNode" {
		t.Errorf("DriverError.Node = %q, want \"NoSuchNode\"", derr.Node)
	}
}

func TestSimDriver_SetEnumRejectsUnknownValue(t *testing.T) {
	d := initedSim(t)

	got, err := d.SetEnum("PixelFormat", "BayerGB12")
	if err != nil {
		t.Fatalf("SetEnum() error = %v", err)
	}
	if got != "Mono8" {
		t.Errorf("SetEnum() = %q, want unchanged \"Mono8\"", got)
	}

	got, err = d.SetEnum("PixelFormat", "RGB8")
	if err != nil {
		t.Fatalf("SetEnum() error = %v", err)
	}
	if got != "RGB8" {
		t.Errorf("SetEnum() = %q, want \"RGB8\"", got)
	}
}

func TestSimDriver_AcquisitionDeliversFrames(t *testing.T) {
	d := initedSim(t)

	var (
		mu     sync.Mutex
		frames []*Frame
	)
	cb := func(f *Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	}

	if _, err := d.SetFloat("AcquisitionFrameRate", 120); err != nil {
		t.Fatalf("SetFloat() error = %v", err)
	}
	if err := d.StartAcquisition(cb, time.Second, true); err != nil {
		t.Fatalf("StartAcquisition() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(frames)
		mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("got %d frames before deadline, want at least 3", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := d.StopAcquisition(); err != nil {
		t.Fatalf("StopAcquisition() error = %v", err)
	}

	mu.Lock()
	frame := frames[0]
	mu.Unlock()

	if frame.PixelFormat != FormatMono8 {
		t.Errorf("PixelFormat = %v, want Mono8", frame.PixelFormat)
	}
	if frame.Width != simWidth || frame.Height != simHeight {
		t.Errorf("geometry = %dx%d, want %dx%d", frame.Width, frame.Height, simWidth, simHeight)
	}
	if len(frame.Data) != frame.Stride*frame.Height {
		t.Errorf("len(Data) = %d, want %d", len(frame.Data), frame.Stride*frame.Height)
	}
	if frame.Brightness == 0 {
		t.Error("Brightness = 0, want computed value")
	}
}

func TestSimDriver_StartRequiresInit(t *testing.T) {
	d := NewSimDriver("22222222")

	err := d.StartAcquisition(func(*Frame) {}, time.Second, false)
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("StartAcquisition() error = %v, want ErrNotInitialized", err)
	}
}

func TestSimDriver_DeinitWhileRunning(t *testing.T) {
	d := initedSim(t)

	if err := d.StartAcquisition(func(*Frame) {}, time.Second, false); err != nil {
		t.Fatalf("StartAcquisition() error = %v", err)
	}
	defer d.StopAcquisition() //nolint:errcheck // test cleanup

	if err := d.DeinitDevice(); !errors.Is(err, ErrAcquisitionRunning) {
		t.Errorf("DeinitDevice() error = %v, want ErrAcquisitionRunning", err)
	}
}
