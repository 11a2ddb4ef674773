package handlers

import (
	"francoggm/mpesa-c2b-relay/internal/app/healthcheck"
	"net/http"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := h.health.Health()

	status := http.StatusOK
	if health.Status != healthcheck.StatusOK {
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, health)
}
