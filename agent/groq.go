package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"recomendachef"
)

// GroqClient speaks the OpenAI-compatible chat completions API hosted by Groq.
type GroqClient struct {
	endpoint    string
	apiKey      string
	model       string
	httpClient  recomendachef.HTTPClient
	maxTokens   int32
	temperature float32
	topP        float32
}

type GroqOpts struct {
	BaseEndpoint string
	APIKey       string
	ModelID      string
	HTTPClient   recomendachef.HTTPClient
	MaxTokens    int32
	Temperature  float32
	TopP         float32
}

func NewGroqClient(opts GroqOpts) (*GroqClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("missing Groq API key")
	}
	if opts.ModelID == "" {
		return nil, fmt.Errorf("missing model id")
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1024
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	if opts.TopP == 0 {
		opts.TopP = 0.9
	}
	return &GroqClient{
		endpoint:    opts.BaseEndpoint + "/v1/chat/completions",
		apiKey:      opts.APIKey,
		model:       opts.ModelID,
		httpClient:  opts.HTTPClient,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		topP:        opts.TopP,
	}, nil
}

type groqFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type groqTool struct {
	Type     string       `json:"type"`
	Function groqFunction `json:"function"`
}

type groqFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type groqToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"`
	Function groqFunctionCall `json:"function"`
}

type groqMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []groqToolCall `json:"tool_calls,omitempty"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Tools       []groqTool    `json:"tools,omitempty"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	TopP        float32       `json:"top_p,omitempty"`
	Stream      bool          `json:"stream"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	// other metadata omitted but available
}

// Invoke sends the request to the chat completions endpoint and maps the
// first choice back to the provider-neutral Response.
func (c *GroqClient) Invoke(ctx context.Context, req Request) (Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(req.Messages))

	msgs, err := c.buildMessages(req)
	if err != nil {
		return Response{}, err
	}

	tools, err := buildGroqTools(req.Tools)
	if err != nil {
		return Response{}, err
	}

	reqBody := groqRequest{
		Model:       c.model,
		Messages:    msgs,
		Tools:       tools,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		Stream:      false,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr groqResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return Response{}, fmt.Errorf("LLM_CLIENT: failed to decode response: %w", err)
	}
	if len(wr.Choices) == 0 {
		return Response{}, fmt.Errorf("LLM_CLIENT: response contained no choices")
	}

	choice := wr.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		tc := make([]ToolCall, 0, len(choice.ToolCalls))
		for _, call := range choice.ToolCalls {
			args := map[string]any{}
			if call.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
					slog.Warn("LLM_CLIENT: unparseable tool arguments, passing empty",
						"tool", call.Function.Name, "error", err)
					args = map[string]any{}
				}
			}
			tc = append(tc, ToolCall{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: args,
			})
		}
		return Response{Content: choice.Content, ToolCalls: tc}, nil
	}

	return Response{Content: choice.Content}, nil
}

// buildMessages converts the neutral transcript into OpenAI-style chat
// messages, prepending the system instruction.
func (c *GroqClient) buildMessages(req Request) ([]groqMessage, error) {
	messages := make([]groqMessage, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, groqMessage{Role: "system", Content: req.System})
	}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleUser:
			messages = append(messages, groqMessage{Role: "user", Content: m.Content})

		case RoleAssistant:
			gm := groqMessage{Role: "assistant", Content: m.Content}
			for _, call := range m.ToolCalls {
				args, err := json.Marshal(call.Args)
				if err != nil {
					return nil, fmt.Errorf("marshal tool call args for %q: %w", call.Name, err)
				}
				gm.ToolCalls = append(gm.ToolCalls, groqToolCall{
					ID:   call.ID,
					Type: "function",
					Function: groqFunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			messages = append(messages, gm)

		case RoleTool:
			if m.Name == "" {
				slog.Warn("groq: dropping tool message without name")
				continue
			}
			messages = append(messages, groqMessage{
				Role:       "tool",
				Name:       m.Name,
				ToolCallID: m.ToolUseID,
				Content:    m.Content,
			})

		default:
			slog.Warn("groq: unknown role, coercing to user", "role", m.Role)
			messages = append(messages, groqMessage{Role: "user", Content: m.Content})
		}
	}

	return messages, nil
}

func buildGroqTools(specs []ToolSpec) ([]groqTool, error) {
	out := make([]groqTool, 0, len(specs))
	for _, spec := range specs {
		// Pre-marshal the schema so its custom MarshalJSON applies, then
		// parse it back to a plain map for the wire format.
		schemaJSON, err := json.Marshal(spec.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal tool schema for %s: %w", spec.Name, err)
		}
		var params map[string]any
		if err := json.Unmarshal(schemaJSON, &params); err != nil {
			return nil, fmt.Errorf("unmarshal tool schema for %s: %w", spec.Name, err)
		}

		out = append(out, groqTool{
			Type: "function",
			Function: groqFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			},
		})
	}
	return out, nil
}
