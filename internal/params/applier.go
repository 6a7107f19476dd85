package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
)

// floatTolerance is the relative tolerance for float verification.
// A write verifies when |requested - actual| <= 0.025 * |requested + actual|,
// which absorbs device-side quantization without hiding real clamping.
const floatTolerance = 0.025

// Result reports the outcome of one verified setting write.
type Result struct {
	// Actual is the value the device reports after the write,
	// rendered as a string for logs and the audit trail.
	Actual string

	// Verified is true when the device's value matches the request
	// within the kind's tolerance.
	Verified bool
}

// Applier writes parameter values to the device and verifies them.
//
// Every write reads the device's value back. A mismatch is not an
// error; it is reported through Result.Verified so callers can log,
// record, and continue. Errors are reserved for type mismatches,
// invalid kinds, and device faults.
type Applier struct {
	driver camera.Driver
	log    *logging.Logger
}

// NewApplier creates an Applier for the given driver.
func NewApplier(driver camera.Driver, log *logging.Logger) *Applier {
	return &Applier{driver: driver, log: log}
}

// Apply writes value to the parameter's device node per its kind.
//
// Kind dispatch:
//   - enum: double quotes are stripped from the value, then an exact
//     symbolic match is required
//   - float: relative tolerance comparison
//   - int, bool: exact comparison
//   - invalid: fails without touching the device
//
// Parameters:
//   - desc: Registry descriptor naming the node and kind
//   - value: Value to write
//
// Returns:
//   - Result: Device's actual value and verification outcome
//   - error: Type mismatch, invalid kind, or device fault
func (a *Applier) Apply(desc Descriptor, value Value) (Result, error) {
	switch desc.Kind {
	case KindEnum:
		s, ok := value.AsString()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s wants enum string, got %s",
				ErrTypeMismatch, desc.Name, value)
		}
		s = strings.ReplaceAll(s, `"`, "")
		return a.applyEnum(desc.Node, s)

	case KindFloat:
		f, ok := value.AsFloat()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s wants float, got %s",
				ErrTypeMismatch, desc.Name, value)
		}
		actual, verified, err := a.ApplyFloat(desc.Node, f)
		if err != nil {
			return Result{}, err
		}
		return Result{Actual: formatFloat(actual), Verified: verified}, nil

	case KindInt:
		i, ok := value.AsInt()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s wants int, got %s",
				ErrTypeMismatch, desc.Name, value)
		}
		return a.applyInt(desc.Node, i)

	case KindBool:
		b, ok := value.AsBool()
		if !ok {
			return Result{}, fmt.Errorf("%w: %s wants bool, got %s",
				ErrTypeMismatch, desc.Name, value)
		}
		return a.applyBool(desc.Node, b)

	default:
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidKind, desc.Name)
	}
}

// ApplyFloat writes a float node and verifies it within tolerance.
// Exposed separately for the control channel, which writes exposure
// and gain by node without going through Value dispatch.
//
// Returns:
//   - float64: The device's value after the write
//   - bool: Whether the value verified within tolerance
//   - error: Device fault
func (a *Applier) ApplyFloat(node string, v float64) (float64, bool, error) {
	a.log.Info("setting node", "node", node, "value", v)

	actual, err := a.driver.SetFloat(node, v)
	if err != nil {
		return 0, false, err
	}
	if !floatMatches(v, actual) {
		a.log.Warn("node set to different value",
			"node", node,
			"requested", v,
			"actual", actual)
		return actual, false, nil
	}
	return actual, true, nil
}

func (a *Applier) applyEnum(node, v string) (Result, error) {
	a.log.Info("setting node", "node", node, "value", v)

	actual, err := a.driver.SetEnum(node, v)
	if err != nil {
		return Result{}, err
	}
	verified := actual == v
	if !verified {
		a.log.Warn("node set to different value",
			"node", node,
			"requested", v,
			"actual", actual)
	}
	return Result{Actual: actual, Verified: verified}, nil
}

func (a *Applier) applyInt(node string, v int64) (Result, error) {
	a.log.Info("setting node", "node", node, "value", v)

	actual, err := a.driver.SetInt(node, v)
	if err != nil {
		return Result{}, err
	}
	verified := actual == v
	if !verified {
		a.log.Warn("node set to different value",
			"node", node,
			"requested", v,
			"actual", actual)
	}
	return Result{Actual: strconv.FormatInt(actual, 10), Verified: verified}, nil
}

func (a *Applier) applyBool(node string, v bool) (Result, error) {
	a.log.Info("setting node", "node", node, "value", v)

	actual, err := a.driver.SetBool(node, v)
	if err != nil {
		return Result{}, err
	}
	verified := actual == v
	if !verified {
		a.log.Warn("node set to different value",
			"node", node,
			"requested", v,
			"actual", actual)
	}
	return Result{Actual: strconv.FormatBool(actual), Verified: verified}, nil
}

// floatMatches reports whether actual is within the relative tolerance
// of requested.
func floatMatches(requested, actual float64) bool {
	return math.Abs(requested-actual) <= floatTolerance*math.Abs(requested+actual)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
