// Spinbridge - camera to MQTT bridge
//
// Spinbridge attaches to a machine-vision camera, publishes its frames
// and per-frame metadata over MQTT, and exposes the camera's settings
// as a typed, verified configuration surface. It is built for
// always-on capture rigs: acquisition is never blocked by slow
// consumers, every setting write is read back and checked, and a
// periodic status report makes silent frame loss visible.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/calder-vision/spinbridge/internal/bridge"
	"github.com/calder-vision/spinbridge/internal/camera"
	"github.com/calder-vision/spinbridge/internal/infrastructure/audit"
	"github.com/calder-vision/spinbridge/internal/infrastructure/config"
	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
	"github.com/calder-vision/spinbridge/internal/infrastructure/metrics"
	"github.com/calder-vision/spinbridge/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting spinbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect metrics sink (optional)
	var metricsClient *metrics.Client
	if cfg.Metrics.Enabled {
		metricsClient, err = metrics.Connect(cfg.Metrics)
		if err != nil {
			return fmt.Errorf("connecting to metrics sink: %w", err)
		}
		defer func() {
			log.Info("closing metrics connection")
			if closeErr := metricsClient.Close(); closeErr != nil {
				log.Error("error closing metrics", "error", closeErr)
			}
		}()
		log.Info("metrics connected",
			"url", cfg.Metrics.URL,
			"org", cfg.Metrics.Org,
			"bucket", cfg.Metrics.Bucket,
		)

		metricsClient.SetOnError(func(err error) {
			log.Error("metrics write error", "error", err)
		})
	} else {
		log.Info("metrics disabled")
	}

	// Open settings audit trail (optional)
	var auditStore *audit.Store
	auditStore, err = audit.Open(cfg.Audit)
	if err != nil {
		if !errors.Is(err, audit.ErrDisabled) {
			return fmt.Errorf("opening audit trail: %w", err)
		}
		auditStore = nil
		log.Info("audit trail disabled")
	} else {
		defer func() {
			log.Info("closing audit trail")
			if closeErr := auditStore.Close(); closeErr != nil {
				log.Error("error closing audit trail", "error", closeErr)
			}
		}()
		log.Info("audit trail open",
			"path", auditStore.Path(),
			"session", auditStore.SessionID(),
		)
	}

	// Build the camera driver and bridge
	driver := newDriver(cfg)
	b := bridge.New(cfg, driver, mqttClient, metricsClient, auditStore, log)

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		if stopErr := b.Stop(); stopErr != nil {
			log.Error("error stopping bridge", "error", stopErr)
		}
	}()
	log.Info("bridge started",
		"serial", cfg.Camera.SerialNumber,
		"frame_id", cfg.Camera.FrameID,
	)

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, mqttClient, metricsClient, auditStore); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridge (stops acquisition, releases the camera)
	// 2. Audit trail (if enabled)
	// 3. Metrics (if enabled)
	// 4. MQTT

	log.Info("spinbridge stopped")
	return nil
}

// newDriver selects the camera driver implementation.
//
// The simulated driver is the in-tree implementation, used for
// development and broker-only rigs. Hardware SDK drivers satisfy
// camera.Driver from their own packages and slot in here.
func newDriver(cfg *config.Config) camera.Driver {
	return camera.NewSimDriver(cfg.Camera.SerialNumber)
}

// getConfigPath returns the configuration file path.
// Uses SPINBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SPINBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - metricsClient: Metrics client to check (may be nil if disabled)
//   - auditStore: Audit store to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, metricsClient *metrics.Client, auditStore *audit.Store) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if metricsClient != nil {
		if err := metricsClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if auditStore != nil {
		if err := auditStore.HealthCheck(ctx); err != nil {
			return fmt.Errorf("audit: %w", err)
		}
	}

	return nil
}
