package handler

import (
	"net/http"

	"telebot/internal/domain/services"
	"telebot/internal/httputil"
)

// HealthHandler reports liveness and the active AI configuration
type HealthHandler struct {
	resolver  services.AIResolver
	patchMode string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(resolver services.AIResolver, patchMode string) *HealthHandler {
	return &HealthHandler{resolver: resolver, patchMode: patchMode}
}

type healthResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
	PatchMode string   `json:"patch_mode"`
}

// Health returns service status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Providers: h.resolver.Strategies(),
		PatchMode: h.patchMode,
	})
}
