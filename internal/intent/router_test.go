package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-wern/portfolio-assistant/internal/model"
	"github.com/d-wern/portfolio-assistant/internal/openrouter"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
)

type fixedRotator struct {
	ids []string
}

func (f fixedRotator) Rotated(ctx context.Context) ([]string, bool) {
	return f.ids, len(f.ids) > 1
}

type scriptedCompleter struct {
	replies []string
	errs    []error
	calls   int
	models  []string
}

func (s *scriptedCompleter) Complete(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error) {
	i := s.calls
	s.calls++
	s.models = append(s.models, req.Model)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return &openrouter.Completion{Content: reply, Model: req.Model}, nil
}

func newTestRouter(t *testing.T, client Completer, ids ...string) *Router {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return NewRouter(fixedRotator{ids: ids}, client, 3, log)
}

func userMsg(text string) []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleUser, Content: text}}
}

func TestClassifyParsesStrictJSON(t *testing.T) {
	client := &scriptedCompleter{replies: []string{`{"tool":"compose_email_draft"}`}}
	r := newTestRouter(t, client, "m1", "m2", "m3")

	tool := r.Classify(context.Background(), userMsg("email daniel about coffee"))
	assert.Equal(t, model.ToolEmailDraft, tool)
	assert.Equal(t, 1, client.calls)
}

func TestClassifyTriesNextModelOnGarbage(t *testing.T) {
	client := &scriptedCompleter{replies: []string{
		"Sure! I'd route this to the email tool.",
		`{"tool":"get_profile_context"}`,
	}}
	r := newTestRouter(t, client, "m1", "m2", "m3")

	tool := r.Classify(context.Background(), userMsg("what does daniel do?"))
	assert.Equal(t, model.ToolProfileContext, tool)
	assert.Equal(t, 2, client.calls)
}

func TestClassifyDefaultsWhenAllAttemptsUnparseable(t *testing.T) {
	client := &scriptedCompleter{replies: []string{"nope", "{}", `{"tool":"unknown_tool"}`}}
	r := newTestRouter(t, client, "m1", "m2", "m3")

	tool := r.Classify(context.Background(), userMsg("hi"))
	assert.Equal(t, model.DefaultTool, tool)
	assert.Equal(t, 3, client.calls)
}

func TestClassifyDefaultsWhenAllAttemptsError(t *testing.T) {
	boom := errors.New("unavailable")
	client := &scriptedCompleter{errs: []error{boom, boom, boom}}
	r := newTestRouter(t, client, "m1", "m2", "m3")

	tool := r.Classify(context.Background(), userMsg("hi"))
	assert.Equal(t, model.ToolProfileContext, tool)
}

func TestClassifyCapsAttemptsAtPoolSize(t *testing.T) {
	client := &scriptedCompleter{replies: []string{"bad"}}
	r := newTestRouter(t, client, "only")

	tool := r.Classify(context.Background(), userMsg("hi"))
	assert.Equal(t, model.DefaultTool, tool)
	assert.Equal(t, 1, client.calls)
}

func TestClassifyBoundsConversationWindow(t *testing.T) {
	client := &scriptedCompleter{replies: []string{`{"tool":"get_profile_context"}`}}
	log, err := logger.New("error")
	require.NoError(t, err)

	var captured int
	capture := completerFunc(func(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error) {
		captured = len(req.Messages)
		return client.Complete(ctx, req)
	})
	r := NewRouter(fixedRotator{ids: []string{"m1"}}, capture, 3, log)

	var msgs []model.ChatMessage
	for i := 0; i < 30; i++ {
		msgs = append(msgs, model.ChatMessage{Role: model.RoleUser, Content: "turn"})
	}
	r.Classify(context.Background(), msgs)

	// system prompt + 10-turn tail
	assert.Equal(t, 11, captured)
}

type completerFunc func(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error)

func (f completerFunc) Complete(ctx context.Context, req *openrouter.ChatRequest) (*openrouter.Completion, error) {
	return f(ctx, req)
}

func TestParseToolChoice(t *testing.T) {
	cases := []struct {
		in   string
		want model.ToolChoice
		ok   bool
	}{
		{`{"tool":"get_profile_context"}`, model.ToolProfileContext, true},
		{` {"tool":"compose_email_draft"} `, model.ToolEmailDraft, true},
		{"```json\n{\"tool\":\"compose_email_draft\"}\n```", "", false},
		{`{"tool":"delete_everything"}`, "", false},
		{`["get_profile_context"]`, "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseToolChoice(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if ok {
			assert.Equal(t, tc.want, got)
		}
	}
}
