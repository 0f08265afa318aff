package model

import (
	"time"
)

// Exchange is one completed assistant interaction, recorded to the
// ASSISTANT stream for later inspection. It is never read back on the
// request path.
type Exchange struct {
	ID        string     `json:"id"`
	Tool      ToolChoice `json:"tool"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Model     string     `json:"model,omitempty"`
	Attempts  int        `json:"attempts,omitempty"`
	LatencyMs int64      `json:"latency_ms,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	// Sequence is the JetStream sequence, populated on read.
	Sequence uint64 `json:"sequence,omitempty"`
}

// ListExchangesResponse is the admin listing payload.
type ListExchangesResponse struct {
	Exchanges []Exchange `json:"exchanges"`
	HasMore   bool       `json:"has_more"`
}
