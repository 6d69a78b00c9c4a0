// Package logging provides structured logging with per-module log level
// configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"bridge": "debug",  // Per-module overrides
//			"sink":   "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("bridge")
//	logger.Info("Connected to camera", "address", addr)
//
// Add contextual attributes:
//
//	logger := logging.GetLogger("bridge").With("camera", name)
//	logger.Info("Stream started")  // Includes camera in all logs
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t camlink              # All camlink logs
//	journalctl -t camlink -f           # Follow live
//	journalctl -t camlink -p err       # Errors only
//
// Filter by structured fields:
//
//	journalctl -t camlink MODULE=bridge
//	journalctl -t camlink CAMERA=driveway
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
package logging
