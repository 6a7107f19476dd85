package bridge

import "errors"

// Sentinel errors for bridge lifecycle operations.
var (
	// ErrAlreadyStarted indicates Start was called on a running bridge.
	ErrAlreadyStarted = errors.New("bridge: already started")
)
