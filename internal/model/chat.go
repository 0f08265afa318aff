// Package model defines data structures for the assistant pipeline.
package model

import (
	"errors"
	"strings"
)

// Role represents the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MaxConversationWindow bounds how many trailing messages are kept
// before a conversation is sent upstream.
const MaxConversationWindow = 50

// ChatMessage is a single conversation turn.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the inbound payload for the assistant endpoint. Either
// Query or Messages must be set; when both are present Messages wins.
type AskRequest struct {
	Query    string        `json:"query,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

var (
	// ErrEmptyRequest is returned when neither a query nor messages are supplied.
	ErrEmptyRequest = errors.New("query or messages required")

	// ErrLastNotUser is returned when the trailing message of a supplied
	// conversation was not authored by the user.
	ErrLastNotUser = errors.New("last message must be from user")

	// ErrBadRole is returned for roles other than user/assistant.
	ErrBadRole = errors.New("messages may only use user and assistant roles")
)

// Conversation normalizes the request into a bounded message window:
// blank entries are dropped, the window is capped at MaxConversationWindow,
// and the final entry must be user-authored.
func (r *AskRequest) Conversation() ([]ChatMessage, error) {
	var msgs []ChatMessage

	if len(r.Messages) > 0 {
		for _, m := range r.Messages {
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			if m.Role != RoleUser && m.Role != RoleAssistant {
				return nil, ErrBadRole
			}
			msgs = append(msgs, m)
		}
	} else if strings.TrimSpace(r.Query) != "" {
		msgs = []ChatMessage{{Role: RoleUser, Content: strings.TrimSpace(r.Query)}}
	}

	if len(msgs) == 0 {
		return nil, ErrEmptyRequest
	}
	if len(msgs) > MaxConversationWindow {
		msgs = msgs[len(msgs)-MaxConversationWindow:]
	}
	if msgs[len(msgs)-1].Role != RoleUser {
		return nil, ErrLastNotUser
	}
	return msgs, nil
}

// LastUserText returns the content of the trailing user message.
func LastUserText(msgs []ChatMessage) string {
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}

// EmailAction describes a ready-to-render mail-compose affordance. The
// caller renders it as a link; the API never auto-navigates.
type EmailAction struct {
	Type     string `json:"type"` // always "email_compose"
	Href     string `json:"href"`
	Label    string `json:"label"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	AutoOpen bool   `json:"autoOpen"`
}

// AskResponse is the assistant endpoint's success payload.
type AskResponse struct {
	Answer   string       `json:"answer"`
	Model    string       `json:"model"`
	Rotated  bool         `json:"rotated"`
	PoolSize int          `json:"poolSize"`
	Tool     ToolChoice   `json:"tool"`
	Action   *EmailAction `json:"action,omitempty"`
}
