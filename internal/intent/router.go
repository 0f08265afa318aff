// Package intent classifies user requests into backend capabilities.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/internal/model"
	"github.com/d-wern/portfolio-assistant/internal/openrouter"
	"github.com/d-wern/portfolio-assistant/internal/pool"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
	"github.com/d-wern/portfolio-assistant/pkg/metrics"
)

// routingWindow bounds how many trailing turns are sent to the
// classifier so the prompt cannot grow without bound.
const routingWindow = 10

const routerPrompt = `You are a request router for a personal portfolio assistant.
Classify the user's latest message into exactly one tool:
- "get_profile_context": questions about the site owner, their work, projects, experience, or anything answerable from profile information.
- "compose_email_draft": the user wants to write, draft, or send an email.
Respond with a single JSON object and nothing else, for example:
{"tool":"get_profile_context"}`

// Completer is the slice of the upstream client the router needs.
type Completer interface {
	Complete(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error)
}

// Router asks an upstream model which tool to invoke, with a
// deterministic fail-safe default.
type Router struct {
	rotator  pool.Rotator
	client   Completer
	attempts int
	log      *logger.Logger
}

// NewRouter creates a tool router. attempts bounds how many pool models
// are consulted before giving up.
func NewRouter(rotator pool.Rotator, client Completer, attempts int, log *logger.Logger) *Router {
	if attempts <= 0 {
		attempts = 3
	}
	return &Router{rotator: rotator, client: client, attempts: attempts, log: log}
}

// Classify returns the tool for the conversation's latest user message.
// It never fails: when no attempt yields a valid classification it
// returns model.DefaultTool, keeping ambiguity away from the
// side-effecting email path.
func (r *Router) Classify(ctx context.Context, msgs []model.ChatMessage) model.ToolChoice {
	tail := msgs
	if len(tail) > routingWindow {
		tail = tail[len(tail)-routingWindow:]
	}

	prompt := make([]model.ChatMessage, 0, len(tail)+1)
	prompt = append(prompt, model.ChatMessage{Role: model.RoleSystem, Content: routerPrompt})
	prompt = append(prompt, tail...)

	ids, _ := r.rotator.Rotated(ctx)
	if len(ids) > r.attempts {
		ids = ids[:r.attempts]
	}

	for _, id := range ids {
		completion, err := r.client.Complete(ctx, &openrouter.ChatRequest{
			Model:       id,
			Messages:    prompt,
			Temperature: 0,
			MaxTokens:   24,
		})
		if err != nil {
			r.log.Debug("routing attempt failed", zap.String("model", id), zap.Error(err))
			continue
		}

		if tool, ok := parseToolChoice(completion.Content); ok {
			metrics.ToolRoutesTotal.WithLabelValues(string(tool), "classified").Inc()
			return tool
		}
		r.log.Debug("routing attempt unparseable", zap.String("model", id))
	}

	metrics.ToolRoutesTotal.WithLabelValues(string(model.DefaultTool), "default").Inc()
	return model.DefaultTool
}

// parseToolChoice accepts only a bare JSON object naming a known tool.
func parseToolChoice(content string) (model.ToolChoice, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return "", false
	}

	var parsed struct {
		Tool model.ToolChoice `json:"tool"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return "", false
	}
	if !parsed.Tool.Known() {
		return "", false
	}
	return parsed.Tool, true
}
