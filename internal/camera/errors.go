package camera

import (
	"errors"
	"fmt"
)

// Sentinel errors for camera operations.
var (
	// ErrNotFound indicates no camera with the requested serial was
	// enumerated within the configured discovery attempts.
	ErrNotFound = errors.New("camera: device not found")

	// ErrNotInitialized indicates an operation that requires an
	// attached device was called before InitDevice.
	ErrNotInitialized = errors.New("camera: device not initialized")

	// ErrAcquisitionRunning indicates a conflicting operation was
	// attempted while frames are being delivered.
	ErrAcquisitionRunning = errors.New("camera: acquisition running")
)

// DriverError wraps a vendor SDK failure with the operation and node
// it occurred on. Setting appliers use the Node field to report which
// device node rejected a write.
type DriverError struct {
	Op   string // driver operation, e.g. "SetFloat"
	Node string // device node name, "" for non-node operations
	Err  error
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("camera: %s %s: %v", e.Op, e.Node, e.Err)
	}
	return fmt.Sprintf("camera: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying SDK error.
func (e *DriverError) Unwrap() error {
	return e.Err
}
