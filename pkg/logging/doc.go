// Package logging provides structured logging utilities for the cluster validator.
//
// # Overview
//
// This package wraps the standard library slog package with validator defaults
// so every component logs the same way: JSON records on stderr, tagged with the
// module name and build version. Debug level adds source locations.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: polling iterations, per-technique probe output, source location
//   - INFO: step and attempt transitions (default)
//   - WARN/WARNING: pressure conditions, cleanup failures, kubelet findings
//   - ERROR: terminal pipeline failure
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLoggerWithLevel("cvctl", version, "info")
//	    slog.Info("attempt started", "attempt", 1, "maxAttempts", 3)
//	}
//
// Interactive use:
//
//	logging.SetDefaultTextLoggerWithLevel("cvctl", version, "debug")
//
// # Environment Configuration
//
// When no level is given explicitly, LOG_LEVEL is consulted:
//
//	LOG_LEVEL=debug cvctl
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "step completed",
//	    "module": "cvctl",
//	    "version": "v0.1.0",
//	    "step": "nodes",
//	    "outcome": "pass"
//	}
package logging
