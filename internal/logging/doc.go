// Package logging provides structured logging for bleradar.
//
// This package wraps a package-level zap logger with convenience functions
// used throughout the scanner, plus a few domain helpers for scan cycle
// events.
//
// # Log Levels
//
//   - Debug: state transitions, per-peripheral detail
//   - Info: cycle summaries, subscriber connections, startup
//   - Warn: skipped peripherals, aborted cycles, missing datasets
//   - Error: publication and adapter failures
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// An empty level falls back to BLERADAR_LOG_LEVEL; when that is unset too the
// logger is a no-op so console output stays clean.
//
// Logs go to stderr so that snapshot output on stdout can be piped.
package logging
