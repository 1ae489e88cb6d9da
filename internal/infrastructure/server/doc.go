// Package server wires the app switcher service together.
//
// Startup order:
//  1. Logger and metrics registry
//  2. App manager, seeded from the apps directory, the remote registry,
//     or the default catalog when both are empty
//  3. Session manager
//  4. Gin router with recovery, request logging, metrics, CORS and rate limiting
//
// Example Usage:
//
//	srv, err := server.NewServer(config.LoadOrDefault())
//	go srv.Run()
//	defer srv.Close()
package server
