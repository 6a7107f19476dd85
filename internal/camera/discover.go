package camera

import (
	"context"
	"fmt"
	"time"

	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
)

// Discover searches for a camera with the given serial, refreshing the
// device list between attempts.
//
// Each attempt refreshes the driver's device list and scans the
// enumerated serials. Attempts are spaced by delay. The search stops
// early when ctx is cancelled.
//
// Parameters:
//   - ctx: Context for cancellation during the retry waits
//   - driver: Driver to enumerate with
//   - serial: Serial number to find
//   - attempts: Maximum enumeration attempts (minimum 1)
//   - delay: Pause between attempts
//   - log: Logger for per-attempt progress
//
// Returns:
//   - error: nil once the serial is seen, ErrNotFound after the final
//     attempt, or ctx.Err() on cancellation
func Discover(ctx context.Context, driver Driver, serial string, attempts int, delay time.Duration, log *logging.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := driver.RefreshDeviceList(); err != nil {
			log.Warn("device list refresh failed",
				"attempt", attempt,
				"error", err)
		}

		serials := driver.SerialNumbers()
		for _, s := range serials {
			if s == serial {
				log.Info("camera found",
					"serial", serial,
					"attempt", attempt)
				return nil
			}
		}

		log.Info("waiting for camera",
			"serial", serial,
			"attempt", attempt,
			"max_attempts", attempts,
			"enumerated", len(serials))

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w: serial %s after %d attempts", ErrNotFound, serial, attempts)
}
