// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// The switcher core logs its diagnostics through this package:
// InvalidReorderIndex and StaleIdentifierReference at warn level,
// DuplicateIdentifierViolation at error level.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Warn("Reorder rejected", zap.Error(err))
package logging
