// Package log provides the capture log for the simulator.
//
// The capture log is separate from operational logging (slog). It records a
// machine-readable trace of what every asset loop did: each reading it
// published or failed to publish, each connection state change, and errors.
//
// # Basic Usage
//
// Loops are configured with a Logger implementation:
//
//	// For development: mirror events to the console via slog
//	cfg.Capture = log.NewSlogAdapter(slog.Default())
//
//	// For test runs: write a binary capture file
//	cfg.Capture, _ = log.NewFileLogger("/var/tmp/fleet.scap")
//
//	// Both: use MultiLogger
//	cfg.Capture = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Capture files are a sequence of CBOR-encoded events with integer keys and
// use the .scap extension. "sensorsim capture" views, filters, exports and
// summarizes them.
package log
