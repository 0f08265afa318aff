package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Pricing holds the per-unit costs reported for a model. Values arrive
// as decimal strings; "0" (or absence) on every field means free.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request"`
	Image      string `json:"image"`
}

// Architecture describes a model's supported modalities.
type Architecture struct {
	Modality         string   `json:"modality"`
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
}

// ModelInfo is one entry of the upstream model listing.
type ModelInfo struct {
	ID            string       `json:"id"`
	Created       int64        `json:"created"`
	ContextLength int          `json:"context_length"`
	Pricing       Pricing      `json:"pricing"`
	Architecture  Architecture `json:"architecture"`
}

// FreeModelSuffix marks models the aggregator serves at no cost.
const FreeModelSuffix = ":free"

// IsFree reports whether every cost field is zero or absent, or the id
// carries the documented free marker.
func (m ModelInfo) IsFree() bool {
	if strings.HasSuffix(m.ID, FreeModelSuffix) {
		return true
	}
	for _, v := range []string{m.Pricing.Prompt, m.Pricing.Completion, m.Pricing.Request, m.Pricing.Image} {
		if v != "" && v != "0" && v != "0.0" {
			return false
		}
	}
	return true
}

// SupportsText reports whether the model both accepts and produces text.
func (m ModelInfo) SupportsText() bool {
	if len(m.Architecture.InputModalities) == 0 && len(m.Architecture.OutputModalities) == 0 {
		// Older listing entries only carry the combined modality string.
		return m.Architecture.Modality == "" || strings.Contains(m.Architecture.Modality, "text")
	}
	return contains(m.Architecture.InputModalities, "text") && contains(m.Architecture.OutputModalities, "text")
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

// ListModels retrieves the upstream model listing.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model listing failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read model listing: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: truncate(string(body), 512)}
	}

	var parsed struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model listing: %w", err)
	}
	return parsed.Data, nil
}
