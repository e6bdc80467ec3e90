package handler

import (
	"net/http"
)

// Checker reports whether a dependency is usable.
type Checker interface {
	IsConnected() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	nats     Checker
	llmReady func() bool
}

// NewHealthHandler creates a new health handler. nats may be nil when the
// NATS worker is disabled.
func NewHealthHandler(nats Checker, llmReady func() bool) *HealthHandler {
	return &HealthHandler{
		nats:     nats,
		llmReady: llmReady,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.llmReady != nil && !h.llmReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "no LLM provider configured",
		})
		return
	}

	if h.nats != nil && !h.nats.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
