// Package llm defines the boundary to the reasoning capability: given a
// message history and a tool catalog, produce either a direct reply or a set
// of tool invocations. Implementations live in subpackages.
package llm

import (
	"context"
	"encoding/json"
)

// Chat roles used on the reasoning boundary. RoleTool carries tool execution
// results back to the model for the reflection pass.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single chat message exchanged with the model.
type Message struct {
	Role    string
	Content string
	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall
	// ToolCallID links a RoleTool message to the call it answers.
	ToolCallID string
}

// ToolCall is one tool invocation requested by the model. Arguments are the
// raw JSON emitted by the model; the catalog validates them before execution.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolDefinition declares one callable operation to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema for the arguments object
}

// Completion is the model's answer for one pass: a reply, tool calls, or both.
type Completion struct {
	Reply     string
	ToolCalls []ToolCall
}

// Provider is the reasoning capability. Calls must respect ctx cancellation
// and are expected to enforce a bounded timeout internally.
type Provider interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Completion, error)
}
