package handler

import (
	"context"
	"net/http"
)

// PoolReader exposes the active model pool.
type PoolReader interface {
	Snapshot(ctx context.Context) []string
}

// ModelsHandler reports the active model pool.
type ModelsHandler struct {
	pool PoolReader
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(pool PoolReader) *ModelsHandler {
	return &ModelsHandler{pool: pool}
}

// List handles GET /api/v1/models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	models := h.pool.Snapshot(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models": models,
		"count":  len(models),
	})
}
