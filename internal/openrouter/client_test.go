package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-wern/portfolio-assistant/internal/model"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", Referer: "https://example.dev", Title: "Test"})
	require.NoError(t, err)
	return c
}

func askMessages() []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleUser, Content: "hello"}}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestCompleteSuccess(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://example.dev", r.Header.Get("HTTP-Referer"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "primary-model", req.Model)
		assert.Equal(t, []string{"backup-model"}, req.Models)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "served-model",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hi there"}},
			},
		})
	})

	got, err := c.Complete(context.Background(), &ChatRequest{
		Model:    "primary-model",
		Models:   []string{"backup-model"},
		Messages: askMessages(),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", got.Content)
	assert.Equal(t, "served-model", got.Model)
}

func TestCompleteErrorInSuccessBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Content alongside an error object: the error wins.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "partial text"}},
			},
			"error": map[string]interface{}{
				"code":     429,
				"message":  "rate limited",
				"metadata": map[string]string{"provider_name": "someprovider"},
			},
		})
	})

	_, err := c.Complete(context.Background(), &ChatRequest{Model: "m", Messages: askMessages()})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Status)
	assert.Equal(t, "someprovider", apiErr.Provider)
	assert.True(t, IsRetriable(err))
}

func TestCompleteNonOKStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := c.Complete(context.Background(), &ChatRequest{Model: "m", Messages: askMessages()})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestCompleteEmptyChoices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	_, err := c.Complete(context.Background(), &ChatRequest{Model: "m", Messages: askMessages()})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestListModels(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "meta-llama/llama-3.3-70b-instruct:free", "context_length": 131072},
				{"id": "openai/gpt-4o", "pricing": map[string]string{"prompt": "0.0000025"}},
			},
		})
	})

	infos, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.True(t, infos[0].IsFree())
	assert.False(t, infos[1].IsFree())
}

func TestModelInfoSupportsText(t *testing.T) {
	assert.True(t, ModelInfo{}.SupportsText())
	assert.True(t, ModelInfo{Architecture: Architecture{Modality: "text->text"}}.SupportsText())
	assert.False(t, ModelInfo{Architecture: Architecture{Modality: "image->image"}}.SupportsText())
	assert.True(t, ModelInfo{Architecture: Architecture{
		InputModalities:  []string{"text", "image"},
		OutputModalities: []string{"text"},
	}}.SupportsText())
	assert.False(t, ModelInfo{Architecture: Architecture{
		InputModalities:  []string{"image"},
		OutputModalities: []string{"image"},
	}}.SupportsText())
}
