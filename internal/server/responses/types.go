// Package responses defines JSON response types used by specbuilder HTTP handlers.
package responses

import "time"

// HealthResponse represents the liveness probe response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}

// ReadinessResponse represents the readiness probe response. The server is ready once
// the rendered artifact exists.
type ReadinessResponse struct {
	Status         string    `json:"status"`
	Ready          bool      `json:"ready"`
	Artifact       string    `json:"artifact"`
	LastBuildError string    `json:"last_build_error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
