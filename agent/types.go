package agent

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one transcript entry. Tool results carry the tool's name and
// the tool_use id of the call that produced them; assistant messages carry
// the calls they issued so providers can replay them on the wire.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Name      string     `json:"name,omitempty"`
	ToolUseID string     `json:"tool_use_id,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a tool invocation issued by the model.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolSpec declares one callable to the model.
type ToolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// Request is a provider-neutral model invocation.
type Request struct {
	System   string     `json:"system"`
	Messages []Message  `json:"messages"`
	Tools    []ToolSpec `json:"tools,omitempty"`
}

// Response is what a provider hands back: either tool calls to execute or
// final assistant content.
type Response struct {
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// LLMClient is the external model capability the orchestrator drives.
type LLMClient interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}
