// Package llm exposes the generation backend as a single opaque interface.
// The orchestrator and sub-agents depend only on Client; which provider
// answers a call is a deployment detail, not something this module's
// business logic should know about.
package llm

import "context"

// Role is a conversation message's speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// GenerateRequest is one call to the backend.
type GenerateRequest struct {
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// Usage reports token counts for one call, used to drive the Token Budget
// Manager's Consume and a sub-agent's own usage accounting.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// TotalTokens is the sum charged against a budget reservation.
func (u Usage) TotalTokens() int { return u.InputTokens + u.OutputTokens }

// GenerateResponse is the backend's answer to one call.
type GenerateResponse struct {
	Text  string
	Usage Usage
}

// Client is the opaque generation backend. Implementations are swappable
// deployment details (HTTP call to a hosted model, gRPC to an internal
// service, a local queue) — callers only ever see this interface.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
