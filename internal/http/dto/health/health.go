// Package health contiene DTOs de health check.
package health

import "time"

// ComponentStatus es el estado de un componente.
type ComponentStatus struct {
	Status  string `json:"status"` // "ok" | "error" | "disabled"
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"` // "ready" | "degraded" | "unavailable"
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version,omitempty"`
	Commit     string                     `json:"commit,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}
