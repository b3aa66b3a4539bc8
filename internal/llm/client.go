// Package llm provides the LLM client interface (plain chat, JSON replies and
// tool calling) and its provider implementations.
package llm

import (
	"context"

	"github.com/javiermolinar/scheduleragent/internal/tools"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is one function invocation the model asked for.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON
}

// ChatResult is the outcome of a ChatWithTools round: either plain text or
// one or more tool calls (providers that only support a single call still
// populate a one-element slice).
type ChatResult struct {
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolChoice controls whether/which tool the model must call.
type ToolChoice struct {
	Mode string // "auto", "none", or "required"
	Name string // set only when Mode == "required" and a single tool is forced
}

// ToolChoiceAuto lets the model decide whether to call a tool.
var ToolChoiceAuto = ToolChoice{Mode: "auto"}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and parses the response as JSON into the provided type.
	ChatJSON(ctx context.Context, messages []Message, result any) error

	// ChatWithTools sends messages plus a tool catalog and returns either
	// plain-text content or the tool call(s) the model chose to make.
	ChatWithTools(ctx context.Context, messages []Message, catalog []tools.Spec, choice ToolChoice) (ChatResult, error)
}
