package handler

import "net/http"

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Project *ProjectHandler
	Chat    *ChatHandler
	AI      *AIHandler
	Archive *ArchiveHandler
	Health  *HealthHandler
	// AILimit wraps the AI endpoints; nil leaves them unlimited
	AILimit func(http.Handler) http.Handler
}

// RegisterRoutes registers every route on mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	limit := h.AILimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	// Health check
	mux.HandleFunc("GET /health", h.Health.Health)

	// Project routes
	mux.HandleFunc("GET /api/projects", h.Project.ListProjects)
	mux.HandleFunc("POST /api/projects", h.Project.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.Project.GetProject)
	mux.HandleFunc("PUT /api/projects/{id}", h.Project.UpdateProject)
	mux.HandleFunc("PATCH /api/projects/{id}", h.Project.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Project.DeleteProject)

	// Project files
	mux.HandleFunc("GET /api/projects/{id}/files", h.Project.ListFiles)
	mux.HandleFunc("PATCH /api/projects/{id}/files", h.Project.PatchFiles)

	// Archive routes
	mux.HandleFunc("GET /api/projects/{id}/export", h.Archive.ExportProject)
	mux.HandleFunc("POST /api/projects/{id}/import", h.Archive.ImportProject)

	// Message routes
	mux.HandleFunc("GET /api/projects/{id}/messages", h.Chat.ListMessages)
	mux.HandleFunc("POST /api/projects/{id}/messages", h.Chat.CreateMessage)
	mux.HandleFunc("DELETE /api/projects/{id}/messages", h.Chat.ClearMessages)

	// AI routes
	mux.Handle("POST /api/projects/{id}/chat", limit(http.HandlerFunc(h.Chat.SendMessage)))
	mux.Handle("POST /api/ai/chat", limit(http.HandlerFunc(h.AI.Chat)))
}
