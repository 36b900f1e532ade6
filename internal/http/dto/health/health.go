// Package health contiene el DTO de /health.
package health

type Response struct {
	Status     string            `json:"status"`
	Service    string            `json:"service"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}
