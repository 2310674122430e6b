package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithydocument "github.com/aws/smithy-go/document"
)

const (
	// defaultBedrockModelID is an inference profile ID, not a foundation
	// model ID. See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
	defaultBedrockModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultTopP        = 0.9
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type BedrockOptions struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// BedrockClient speaks the Bedrock Converse API.
type BedrockClient struct {
	brc  bedrockRuntimeClient
	opts BedrockOptions
}

func NewBedrockClient(brc bedrockRuntimeClient, opts BedrockOptions) *BedrockClient {
	if opts.ModelID == "" {
		opts.ModelID = defaultBedrockModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &BedrockClient{brc: brc, opts: opts}
}

func (c *BedrockClient) Invoke(ctx context.Context, req Request) (Response, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(req.Messages))

	var sys []types.SystemContentBlock
	if req.System != "" {
		sys = append(sys, &types.SystemContentBlockMemberText{Value: req.System})
	}

	msgs, err := buildBedrockMessages(req.Messages)
	if err != nil {
		return Response{}, err
	}

	var toolList []types.Tool
	for _, spec := range req.Tools {
		ts, err := buildBedrockToolSpec(spec)
		if err != nil {
			slog.Error("LLM_CLIENT: Failed to build tool spec", "error", err)
			continue
		}
		toolList = append(toolList, &types.ToolMemberToolSpec{Value: ts})
	}

	in := &bedrockruntime.ConverseInput{
		ModelId:  &c.opts.ModelID,
		System:   sys,
		Messages: msgs,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{Tools: toolList, ToolChoice: &types.ToolChoiceMemberAuto{}},
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("LLM_CLIENT: Bedrock invoke failed", "error", err)
		return Response{}, err
	}

	slog.Info("LLM_CLIENT: Bedrock invoke succeeded",
		"stop_reason", out.StopReason,
		"latency_ms", aws.ToInt64(out.Metrics.LatencyMs),
		"input_tokens", aws.ToInt32(out.Usage.InputTokens),
		"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
	)

	switch out.StopReason {
	case "tool_use":
		return Response{ToolCalls: toolCallsFromOutput(out)}, nil

	case "end_turn", "stop_sequence":
		return Response{Content: textFromOutput(out)}, nil

	case "max_tokens":
		return Response{}, fmt.Errorf("model hit MaxTokens limit; consider increasing MaxTokens")

	case "safety", "content_filtered":
		return Response{}, fmt.Errorf("model response blocked by Bedrock safety filters")

	default:
		return Response{Content: textFromOutput(out), ToolCalls: toolCallsFromOutput(out)}, nil
	}
}

func buildBedrockMessages(messages []Message) ([]types.Message, error) {
	var msgs []types.Message
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			msgs = append(msgs, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})

		case RoleAssistant:
			msg := types.Message{Role: types.ConversationRoleAssistant}
			if m.Content != "" {
				msg.Content = append(msg.Content, &types.ContentBlockMemberText{Value: m.Content})
			}
			for _, call := range m.ToolCalls {
				input := map[string]any{}
				for k, v := range call.Args {
					input[k] = v
				}
				msg.Content = append(msg.Content, &types.ContentBlockMemberToolUse{
					Value: types.ToolUseBlock{
						ToolUseId: aws.String(call.ID),
						Name:      aws.String(call.Name),
						Input:     document.NewLazyDocument(input),
					},
				})
			}
			msgs = append(msgs, msg)

		case RoleTool:
			// Converse carries tool results as a user-role message holding a
			// ToolResult block tied to the original toolUseId.
			result := map[string]any{}
			if err := json.Unmarshal([]byte(m.Content), &result); err != nil {
				result = map[string]any{"text": m.Content}
			}
			msgs = append(msgs, types.Message{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberToolResult{
					Value: types.ToolResultBlock{
						ToolUseId: aws.String(m.ToolUseID),
						Status:    types.ToolResultStatusSuccess,
						Content: []types.ToolResultContentBlock{
							&types.ToolResultContentBlockMemberJson{
								Value: document.NewLazyDocument(result),
							},
						},
					},
				}},
			})

		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	return msgs, nil
}

// buildBedrockToolSpec constructs a ToolSpecification for a tool.
func buildBedrockToolSpec(spec ToolSpec) (types.ToolSpecification, error) {
	// Pre-marshal the schema so its custom MarshalJSON applies, then parse
	// it back to a plain map for the document system.
	schemaJSON, err := json.Marshal(spec.InputSchema)
	if err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to marshal tool schema for %s: %w", spec.Name, err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return types.ToolSpecification{}, fmt.Errorf("failed to unmarshal tool schema for %s: %w", spec.Name, err)
	}

	return types.ToolSpecification{
		Name:        aws.String(spec.Name),
		Description: aws.String(spec.Description),
		InputSchema: &types.ToolInputSchemaMemberJson{
			Value: document.NewLazyDocument(schemaMap),
		},
	}, nil
}

func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return ""
	}
	for _, cb := range msg.Value.Content {
		if t, ok := cb.(*types.ContentBlockMemberText); ok && t.Value != "" {
			return t.Value
		}
	}
	return ""
}

func toolCallsFromOutput(out *bedrockruntime.ConverseOutput) []ToolCall {
	var calls []ToolCall

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg.Value.Content == nil {
		return calls
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok {
			continue
		}

		input := map[string]any{}
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			// Keep whatever decoded before the failure; the tool can still
			// reject what is missing.
			slog.Warn("LLM_CLIENT: Partial tool input decode",
				"tool", aws.ToString(tu.Value.Name), "error", err)
		}

		// Normalize deeply instead of just top-level values
		normalized := normalizeArgs(input).(map[string]any)

		calls = append(calls, ToolCall{
			ID:   aws.ToString(tu.Value.ToolUseId),
			Name: aws.ToString(tu.Value.Name),
			Args: normalized,
		})
	}

	return calls
}

// normalizeArgs recursively coerces wire-decoded values for safe downstream
// use. The document system decodes numbers as string-kinded document.Number,
// which float64 type assertions in the tools would reject.
func normalizeArgs(val any) any {
	switch v := val.(type) {
	case smithydocument.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v

	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v

	case []any:
		for i := range v {
			v[i] = normalizeArgs(v[i])
		}
		return v

	case map[string]any:
		for key, item := range v {
			v[key] = normalizeArgs(item)
		}
		return v

	default:
		return v
	}
}
