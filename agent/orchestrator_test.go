package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recomendachef/tools"
)

type mockLLMClient struct {
	responses []Response
	requests  []Request
	err       error
}

func (m *mockLLMClient) Invoke(ctx context.Context, req Request) (Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return Response{}, m.err
	}
	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

type mockTool struct {
	name   string
	runs   []map[string]any
	result map[string]any
	err    error
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Title() string       { return m.name }
func (m *mockTool) Description() string { return "test tool" }
func (m *mockTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}
func (m *mockTool) OutputSchema() *jsonschema.Schema { return nil }
func (m *mockTool) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	m.runs = append(m.runs, input)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockToolProvider struct {
	tools map[string]tools.Tool
}

func newMockToolProvider(entries ...*mockTool) *mockToolProvider {
	tp := &mockToolProvider{tools: map[string]tools.Tool{}}
	for _, t := range entries {
		tp.tools[t.name] = t
	}
	return tp
}

func (p *mockToolProvider) GetTools() []tools.Tool {
	out := make([]tools.Tool, 0, len(p.tools))
	for _, t := range p.tools {
		out = append(out, t)
	}
	return out
}

func (p *mockToolProvider) GetTool(name string) (tools.Tool, error) {
	t, ok := p.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return t, nil
}

func TestOrchestrator_Converse_FinalReplyFirstIteration(t *testing.T) {
	llm := &mockLLMClient{responses: []Response{{Content: "Aquí tienes 3 recetas."}}}
	o := NewOrchestrator(llm, newMockToolProvider(), 5, nil, nil)

	transcript := []Message{{Role: RoleUser, Content: "Recomiéndame algo"}}
	got := o.Converse(context.Background(), 42, transcript)

	assert.Equal(t, RoleAssistant, got.Role)
	assert.Equal(t, "Aquí tienes 3 recetas.", got.Content)
	require.Len(t, llm.requests, 1)
	assert.Equal(t, transcript, llm.requests[0].Messages)
	assert.NotEmpty(t, llm.requests[0].System)
}

func TestOrchestrator_Converse_ToolCallThenFinal(t *testing.T) {
	tool := &mockTool{name: "recipe_search", result: map[string]any{"recipes": []any{}}}
	llm := &mockLLMClient{responses: []Response{
		{ToolCalls: []ToolCall{{ID: "call_1", Name: "recipe_search", Args: map[string]any{"dietary_type": "vegan"}}}},
		{Content: "No encontré recetas veganas."},
	}}
	o := NewOrchestrator(llm, newMockToolProvider(tool), 5, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "algo vegano"}})

	assert.Equal(t, "No encontré recetas veganas.", got.Content)
	require.Len(t, tool.runs, 1)
	assert.Equal(t, map[string]any{"dietary_type": "vegan"}, tool.runs[0])

	// The second request carries the assistant tool-call message and the
	// tool result.
	require.Len(t, llm.requests, 2)
	second := llm.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, RoleAssistant, second[1].Role)
	require.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, RoleTool, second[2].Role)
	assert.Equal(t, "recipe_search", second[2].Name)
	assert.Equal(t, "call_1", second[2].ToolUseID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(second[2].Content), &payload))
	assert.Contains(t, payload, "recipes")
}

func TestOrchestrator_Converse_ToolErrorBecomesPayload(t *testing.T) {
	tool := &mockTool{name: "recipe_search", err: errors.New("catalog unreadable")}
	llm := &mockLLMClient{responses: []Response{
		{ToolCalls: []ToolCall{{ID: "call_1", Name: "recipe_search", Args: map[string]any{}}}},
		{Content: "No pude consultar las recetas."},
	}}
	o := NewOrchestrator(llm, newMockToolProvider(tool), 5, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "hola"}})

	// The failure reaches the model as data, not the user as an error.
	assert.Equal(t, "No pude consultar las recetas.", got.Content)
	require.Len(t, llm.requests, 2)
	toolMsg := llm.requests[1].Messages[2]

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &payload))
	assert.Contains(t, payload["error"], "catalog unreadable")
}

func TestOrchestrator_Converse_UnknownToolBecomesPayload(t *testing.T) {
	llm := &mockLLMClient{responses: []Response{
		{ToolCalls: []ToolCall{{ID: "call_1", Name: "order_pizza", Args: map[string]any{}}}},
		{Content: "Eso no lo sé hacer."},
	}}
	o := NewOrchestrator(llm, newMockToolProvider(), 5, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "pide pizza"}})

	assert.Equal(t, "Eso no lo sé hacer.", got.Content)
	toolMsg := llm.requests[1].Messages[2]
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Content), &payload))
	assert.Contains(t, payload["error"], "not found")
}

func TestOrchestrator_Converse_LLMFailureDegradesToFailureReply(t *testing.T) {
	llm := &mockLLMClient{err: errors.New("rate limited")}
	o := NewOrchestrator(llm, newMockToolProvider(), 5, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "hola"}})

	assert.Equal(t, RoleAssistant, got.Role)
	assert.Equal(t, DefaultFailureReply, got.Content)
}

func TestOrchestrator_Converse_EmptyResponseDegradesToFailureReply(t *testing.T) {
	llm := &mockLLMClient{responses: []Response{{}}}
	o := NewOrchestrator(llm, newMockToolProvider(), 5, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "hola"}})
	assert.Equal(t, DefaultFailureReply, got.Content)
}

func TestOrchestrator_Converse_FailureReplyOverride(t *testing.T) {
	llm := &mockLLMClient{err: errors.New("down")}
	o := NewOrchestrator(llm, newMockToolProvider(), 5, nil, nil)
	o.FailureReply = "Algo salió mal."

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "hola"}})
	assert.Equal(t, "Algo salió mal.", got.Content)
}

func TestOrchestrator_Converse_IterationBudgetExhausted(t *testing.T) {
	tool := &mockTool{name: "inventory_get", result: map[string]any{"inventory": []any{}}}
	llm := &mockLLMClient{responses: []Response{
		{ToolCalls: []ToolCall{{ID: "c", Name: "inventory_get", Args: map[string]any{}}}},
	}}
	o := NewOrchestrator(llm, newMockToolProvider(tool), 3, nil, nil)

	got := o.Converse(context.Background(), 42, []Message{{Role: RoleUser, Content: "hola"}})

	assert.Equal(t, DefaultFailureReply, got.Content)
	assert.Len(t, llm.requests, 3)
	assert.Len(t, tool.runs, 3)
}

func TestOrchestrator_Converse_DoesNotMutateCallerTranscript(t *testing.T) {
	llm := &mockLLMClient{responses: []Response{
		{ToolCalls: []ToolCall{{ID: "c", Name: "inventory_get", Args: map[string]any{}}}},
		{Content: "listo"},
	}}
	tool := &mockTool{name: "inventory_get", result: map[string]any{"inventory": []any{}}}
	o := NewOrchestrator(llm, newMockToolProvider(tool), 5, nil, nil)

	transcript := []Message{{Role: RoleUser, Content: "hola"}}
	o.Converse(context.Background(), 42, transcript)

	require.Len(t, transcript, 1)
	assert.Equal(t, "hola", transcript[0].Content)
}

func TestDedupeToolCalls(t *testing.T) {
	calls := []ToolCall{
		{ID: "a", Name: "recipe_search", Args: map[string]any{"dietary_type": "vegan"}},
		{ID: "b", Name: "recipe_search", Args: map[string]any{"dietary_type": "vegan"}},
		{ID: "c", Name: "recipe_search", Args: map[string]any{"dietary_type": "celiac"}},
		{ID: "d", Name: "inventory_get", Args: map[string]any{}},
	}

	got := dedupeToolCalls(calls)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, "d", got[2].ID)
}
