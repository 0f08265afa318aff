// Package handler provides HTTP handlers for the assistant API.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/internal/middleware"
	"github.com/d-wern/portfolio-assistant/internal/model"
	"github.com/d-wern/portfolio-assistant/internal/service"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
)

// maxRequestBody caps the inbound request payload.
const maxRequestBody = 1 << 20 // 1MB

// Asker runs one request through the assistant pipeline.
type Asker interface {
	Ask(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error)
}

// AssistantHandler handles the public assistant endpoint.
type AssistantHandler struct {
	assistant Asker
	logger    *logger.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(assistant Asker, log *logger.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: log}
}

// Ask handles POST /api/v1/assistant
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req model.AskRequest
	body := io.LimitReader(r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateContent(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, msg := range req.Messages {
		if err := middleware.ValidateContent(msg.Content); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp, err := h.assistant.Ask(r.Context(), &req)
	if err != nil {
		status := service.StatusCode(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("assistant request failed",
				zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
				zap.Int("status", status),
				zap.Error(err))
			writeError(w, status, "the assistant is unavailable right now, please try again")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
