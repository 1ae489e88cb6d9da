/*
Package monitoring provides metrics collection for the switcher backend.

# Overview

This package implements Prometheus-based metrics collection, tracking HTTP
requests, installed apps, live UI sessions, order mutations and the
WebSocket render stream.

# Features

- HTTP request metrics (latency, throughput, size)
- Order metrics (reconciliations, reorders, rejected events)
- Invariant violation counters (duplicates, stale references)
- Session and WebSocket connection gauges

Metrics are registered on the Registerer given to NewMetrics so that tests
can build as many collectors as they need.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Expose the registry
	router.GET("/metrics", gin.WrapH(monitoring.Handler(reg)))
*/
package monitoring
