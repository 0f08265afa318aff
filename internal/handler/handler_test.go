package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-wern/portfolio-assistant/internal/model"
	"github.com/d-wern/portfolio-assistant/internal/service"
	"github.com/d-wern/portfolio-assistant/pkg/logger"
)

type askerFunc func(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error)

func (f askerFunc) Ask(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
	return f(ctx, req)
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error")
	require.NoError(t, err)
	return log
}

func TestAssistantHandlerSuccess(t *testing.T) {
	asker := askerFunc(func(ctx context.Context, req *model.AskRequest) (*model.AskResponse, error) {
		assert.Equal(t, "what does he do?", req.Query)
		return &model.AskResponse{
			Answer:   "Daniel is a software engineer.",
			Model:    "model-a",
			Rotated:  true,
			PoolSize: 3,
			Tool:     model.ToolProfileContext,
		}, nil
	})
	h := NewAssistantHandler(asker, testLog(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(`{"query":"what does he do?"}`))
	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Daniel is a software engineer.", resp.Answer)
	assert.Equal(t, "model-a", resp.Model)
	assert.True(t, resp.Rotated)
}

func TestAssistantHandlerRejectsBadJSON(t *testing.T) {
	h := NewAssistantHandler(askerFunc(func(context.Context, *model.AskRequest) (*model.AskResponse, error) {
		t.Error("pipeline should not run")
		return nil, nil
	}), testLog(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantHandlerRejectsOversizedQuery(t *testing.T) {
	h := NewAssistantHandler(askerFunc(func(context.Context, *model.AskRequest) (*model.AskResponse, error) {
		t.Error("pipeline should not run")
		return nil, nil
	}), testLog(t))

	payload, err := json.Marshal(map[string]string{"query": strings.Repeat("a", 9000)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(string(payload)))
	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistantHandlerSurfacesPipelineStatus(t *testing.T) {
	h := NewAssistantHandler(askerFunc(func(context.Context, *model.AskRequest) (*model.AskResponse, error) {
		return nil, &service.Error{Status: http.StatusServiceUnavailable, Message: "all model attempts failed"}
	}), testLog(t))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", strings.NewReader(`{"query":"hello"}`))
	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	// 5xx details stay in the logs.
	assert.NotContains(t, rec.Body.String(), "all model attempts failed")
}

type fixedPool []string

func (p fixedPool) Snapshot(ctx context.Context) []string { return p }

func TestModelsHandlerList(t *testing.T) {
	h := NewModelsHandler(fixedPool{"model-a", "model-b"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Models []string `json:"models"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"model-a", "model-b"}, resp.Models)
	assert.Equal(t, 2, resp.Count)
}

type exchangeReaderFunc func(ctx context.Context, limit int) ([]model.Exchange, error)

func (f exchangeReaderFunc) RecentExchanges(ctx context.Context, limit int) ([]model.Exchange, error) {
	return f(ctx, limit)
}

func TestExchangesHandlerUnconfigured(t *testing.T) {
	h := NewExchangesHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exchanges", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExchangesHandlerRejectsBadLimit(t *testing.T) {
	h := NewExchangesHandler(exchangeReaderFunc(func(context.Context, int) ([]model.Exchange, error) {
		t.Error("reader should not be called")
		return nil, nil
	}))

	for _, raw := range []string{"0", "201", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/exchanges?limit="+raw, nil)
		rec := httptest.NewRecorder()
		h.List(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", raw)
	}
}

func TestExchangesHandlerList(t *testing.T) {
	recorded := []model.Exchange{
		{ID: "a", Tool: model.ToolProfileContext, Question: "who is he?", CreatedAt: time.Now(), Sequence: 1},
		{ID: "b", Tool: model.ToolEmailDraft, Question: "email sarah", CreatedAt: time.Now(), Sequence: 2},
	}
	h := NewExchangesHandler(exchangeReaderFunc(func(ctx context.Context, limit int) ([]model.Exchange, error) {
		assert.Equal(t, 2, limit)
		return recorded, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exchanges?limit=2", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.ListExchangesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Exchanges, 2)
	assert.True(t, resp.HasMore)
	assert.Equal(t, model.ToolEmailDraft, resp.Exchanges[1].Tool)
}

func TestHealthEndpoints(t *testing.T) {
	h := NewHealthHandler(nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without a configured stream, readiness does not depend on NATS.
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
