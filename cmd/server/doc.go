// Package main is the entry point for the app switcher service.
//
// The service keeps a per-session, user-defined order of application
// shortcuts and streams render-ready projections of it to shell clients.
//
// Configuration:
//   - Environment variables (PORT, LOG_LEVEL, APPS_DIR, REGISTRY_URL, ...)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -apps ./apps
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
