// Package service orchestrates the assistant request pipeline: routing,
// grounded Q&A with model rotation, and email draft synthesis.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d-wern/portfolio-assistant/internal/email"
	"github.com/d-wern/portfolio-assistant/internal/model"
	natsclient "github.com/d-wern/portfolio-assistant/internal/nats"
	"github.com/d-wern/portfolio-assistant/internal/openrouter"
	"github.com/d-wern/portfolio-assistant/internal/pool"
	"github.com/d-wern/portfolio-assistant/internal/profile"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
	"github.com/d-wern/portfolio-assistant/pkg/metrics"
)

const answerPrompt = `You are the assistant for %s's portfolio site. Answer questions about %s using only the profile information below. Be concise and friendly. If the information does not cover the question, say so instead of guessing.

%s`

const draftPrompt = `You help visitors of a portfolio site draft professional emails. From the user's request, produce a draft and respond with a single JSON object and nothing else:
{"to":"<recipient address or empty>","subject":"<subject line>","body":"<full email body>"}
Keep the tone professional and the body under 1500 characters. Never invent a recipient address.`

const draftAnswer = "I've put together an email draft for you. Review it and send it from your own mail client."

// Error carries the HTTP status a pipeline failure should surface as.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps a pipeline error to its HTTP status, defaulting to 500.
func StatusCode(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}
	return http.StatusInternalServerError
}

// Completer is the slice of the upstream client the orchestrator needs.
type Completer interface {
	Complete(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error)
}

// Classifier picks the tool for a conversation.
type Classifier interface {
	Classify(ctx context.Context, msgs []model.ChatMessage) model.ToolChoice
}

// Config holds orchestrator retry parameters.
type Config struct {
	ContextAttempts  int
	DraftAttempts    int
	FallbackPerCycle int
	RetryBaseDelay   time.Duration
}

// Assistant is the request orchestrator. One instance serves all requests.
type Assistant struct {
	rotator  pool.Rotator
	client   Completer
	router   Classifier
	profile  *profile.Assembler
	synth    *email.Synthesizer
	recorder *natsclient.StreamManager
	cfg      Config
	log      *logger.Logger
}

// NewAssistant creates the orchestrator. recorder may be nil when
// exchange recording is not configured.
func NewAssistant(rotator pool.Rotator, client Completer, router Classifier, assembler *profile.Assembler, synth *email.Synthesizer, recorder *natsclient.StreamManager, cfg Config, log *logger.Logger) *Assistant {
	if cfg.ContextAttempts <= 0 {
		cfg.ContextAttempts = 4
	}
	if cfg.DraftAttempts <= 0 {
		cfg.DraftAttempts = 3
	}
	if cfg.FallbackPerCycle <= 0 {
		cfg.FallbackPerCycle = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 750 * time.Millisecond
	}
	return &Assistant{
		rotator:  rotator,
		client:   client,
		router:   router,
		profile:  assembler,
		synth:    synth,
		recorder: recorder,
		cfg:      cfg,
		log:      log,
	}
}

// Ask runs one request through the pipeline. Validation failures return
// a 400-class *Error; upstream exhaustion surfaces the final upstream
// status. No partial answers: a failed profile path returns only an error.
func (a *Assistant) Ask(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
	start := time.Now()

	msgs, err := req.Conversation()
	if err != nil {
		return nil, &Error{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
	}
	question := model.LastUserText(msgs)

	// Deterministic answers skip routing and the upstream entirely.
	if answer, ok := a.profile.ShortCircuit(question, time.Now()); ok {
		metrics.ShortCircuitsTotal.Inc()
		resp := &model.AskResponse{
			Answer: answer,
			Tool:   model.ToolProfileContext,
		}
		a.record(resp, question, 0, start)
		return resp, nil
	}

	tool := a.router.Classify(ctx, msgs)

	var (
		resp     *model.AskResponse
		attempts int
	)
	switch tool {
	case model.ToolEmailDraft:
		resp, attempts = a.draftEmail(ctx, question)
	default:
		resp, attempts, err = a.answerWithContext(ctx, msgs)
		if err != nil {
			return nil, err
		}
	}
	resp.Tool = tool

	a.record(resp, question, attempts, start)
	return resp, nil
}

// answerWithContext runs the grounded Q&A path: up to ContextAttempts
// cycles, each led by the next rotation pick with a provider-side
// fallback list, linear backoff between cycles.
func (a *Assistant) answerWithContext(ctx context.Context, msgs []model.ChatMessage) (*model.AskResponse, int, error) {
	owner := a.profile.Owner()
	system := fmt.Sprintf(answerPrompt, owner.Name, owner.Name, a.profile.ContextBlock(ctx))

	prompt := make([]model.ChatMessage, 0, len(msgs)+1)
	prompt = append(prompt, model.ChatMessage{Role: model.RoleSystem, Content: system})
	prompt = append(prompt, msgs...)

	ids, rotated := a.rotator.Rotated(ctx)
	if len(ids) == 0 {
		return nil, 0, &Error{Status: http.StatusServiceUnavailable, Message: "no models available"}
	}

	var lastErr error
	attempts := 0

	for cycle := 0; cycle < a.cfg.ContextAttempts; cycle++ {
		if cycle > 0 {
			delay := time.Duration(cycle) * a.cfg.RetryBaseDelay
			select {
			case <-ctx.Done():
				return nil, attempts, &Error{Status: http.StatusGatewayTimeout, Message: "request cancelled", Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		primary := ids[cycle%len(ids)]
		completion, err := a.client.Complete(ctx, &openrouter.ChatRequest{
			Model:       primary,
			Models:      a.fallbacksAfter(ids, cycle%len(ids)),
			Messages:    prompt,
			Temperature: 0.7,
			MaxTokens:   800,
		})
		attempts++

		if err == nil {
			metrics.UpstreamLatency.WithLabelValues(completion.Model).Observe(float64(completion.LatencyMs) / 1000)
			return &model.AskResponse{
				Answer:   completion.Content,
				Model:    completion.Model,
				Rotated:  rotated,
				PoolSize: len(ids),
			}, attempts, nil
		}

		lastErr = err
		if !openrouter.IsRetriable(err) {
			a.log.Warn("non-retriable upstream failure",
				zap.String("model", primary),
				zap.Int("attempts", attempts),
				zap.Error(err))
			break
		}
		a.log.Debug("retriable upstream failure",
			zap.String("model", primary),
			zap.Int("cycle", cycle+1),
			zap.Error(err))
	}

	return nil, attempts, &Error{
		Status:  openrouter.StatusOf(lastErr),
		Message: "all model attempts failed",
		Err:     lastErr,
	}
}

// fallbacksAfter returns up to FallbackPerCycle model IDs following the
// primary at index i, wrapping around and never repeating the primary.
func (a *Assistant) fallbacksAfter(ids []string, i int) []string {
	n := a.cfg.FallbackPerCycle
	if n > len(ids)-1 {
		n = len(ids) - 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for k := 1; k <= n; k++ {
		out = append(out, ids[(i+k)%len(ids)])
	}
	return out
}

// draftEmail runs the email path. Upstream draft attempts are best
// effort: when none yields a parseable draft, the local synthesizer
// produces one from the user text alone. This path never fails.
func (a *Assistant) draftEmail(ctx context.Context, question string) (*model.AskResponse, int) {
	ids, rotated := a.rotator.Rotated(ctx)

	prompt := []model.ChatMessage{
		{Role: model.RoleSystem, Content: draftPrompt},
		{Role: model.RoleUser, Content: question},
	}

	var (
		upstream    *email.UpstreamDraft
		servedModel string
		attempts    int
	)

	tries := a.cfg.DraftAttempts
	if tries > len(ids) {
		tries = len(ids)
	}
	for i := 0; i < tries; i++ {
		completion, err := a.client.Complete(ctx, &openrouter.ChatRequest{
			Model:       ids[i],
			Messages:    prompt,
			Temperature: 0.4,
			MaxTokens:   600,
		})
		attempts++
		if err != nil {
			a.log.Debug("draft attempt failed", zap.String("model", ids[i]), zap.Error(err))
			continue
		}
		if d, ok := parseUpstreamDraft(completion.Content); ok {
			upstream = d
			servedModel = completion.Model
			break
		}
		a.log.Debug("draft attempt unparseable", zap.String("model", ids[i]))
	}

	source := "local"
	if upstream != nil {
		source = "upstream"
	}
	metrics.EmailDraftsTotal.WithLabelValues(source).Inc()

	draft := a.synth.Synthesize(question, upstream)

	return &model.AskResponse{
		Answer:   draftAnswer,
		Model:    servedModel,
		Rotated:  rotated,
		PoolSize: len(ids),
		Action: &model.EmailAction{
			Type:     "email_compose",
			Href:     draft.Href,
			Label:    "Open in your email app",
			To:       draft.To,
			Subject:  draft.Subject,
			Body:     draft.Body,
			AutoOpen: false,
		},
	}, attempts
}

// parseUpstreamDraft extracts a draft object from a model reply,
// tolerating code fences and surrounding prose.
func parseUpstreamDraft(content string) (*email.UpstreamDraft, bool) {
	open := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if open < 0 || end <= open {
		return nil, false
	}

	var d email.UpstreamDraft
	if err := json.Unmarshal([]byte(content[open:end+1]), &d); err != nil {
		return nil, false
	}
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Body) == "" {
		return nil, false
	}
	return &d, true
}

// record publishes the exchange, best effort. Recording never affects
// the response.
func (a *Assistant) record(resp *model.AskResponse, question string, attempts int, start time.Time) {
	if a.recorder == nil {
		return
	}

	ex := &model.Exchange{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Tool:      resp.Tool,
		Question:  question,
		Answer:    resp.Answer,
		Model:     resp.Model,
		Attempts:  attempts,
		LatencyMs: time.Since(start).Milliseconds(),
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := a.recorder.PublishExchange(ctx, ex); err != nil {
		metrics.ExchangesRecorded.WithLabelValues("error").Inc()
		a.log.Warn("failed to record exchange", zap.String("exchange_id", ex.ID), zap.Error(err))
		return
	}
	metrics.ExchangesRecorded.WithLabelValues("ok").Inc()
}
