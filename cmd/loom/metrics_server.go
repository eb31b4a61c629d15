package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cuemby/loom/pkg/metrics"
)

// serveMetrics starts the Prometheus/health HTTP endpoints in the
// background, mirroring the teacher's metrics-server wiring, and returns a
// function that shuts it down.
func serveMetrics(addr string) func() {
	metrics.RegisterComponent("scheduler", true, "running")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()
	fmt.Printf("metrics endpoint: http://%s/metrics\n", addr)

	return func() {
		_ = srv.Shutdown(context.Background())
	}
}
