package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"recomendachef"
)

// DefaultFailureReply is what the user sees when the model capability is
// unavailable or never produces a final reply.
const DefaultFailureReply = "Lo siento, ocurrió un error procesando tu mensaje. Intenta de nuevo más tarde."

// Orchestrator mediates between the conversational model and the
// deterministic tools. It trusts the model's final message as the
// user-visible reply and never lets a raw fault escape to the transport.
type Orchestrator struct {
	llm           LLMClient
	toolProvider  recomendachef.ToolProvider
	maxIterations int
	logger        recomendachef.ConversationLogger
	tracer        trace.Tracer

	// FailureReply overrides DefaultFailureReply when non-empty.
	FailureReply string
}

// NewOrchestrator initializes a new orchestrator. tracer may be nil.
func NewOrchestrator(llm LLMClient, tp recomendachef.ToolProvider, maxIter int, log recomendachef.ConversationLogger, tracer trace.Tracer) *Orchestrator {
	return &Orchestrator{
		llm:           llm,
		toolProvider:  tp,
		maxIterations: maxIter,
		logger:        log,
		tracer:        tracer,
	}
}

// Converse runs the tool-invocation loop over the chat's transcript and
// returns the next assistant message to append. It never returns an error:
// model failures and an exhausted iteration budget both degrade to a generic
// failure reply.
func (o *Orchestrator) Converse(ctx context.Context, chatID int64, transcript []Message) Message {
	if o.tracer != nil {
		var span trace.Span
		ctx, span = o.tracer.Start(ctx, "Orchestrator.Converse")
		defer span.End()
	}

	slog.Info("ORCHESTRATOR: Starting turn", "chat_id", chatID, "transcript_len", len(transcript))

	msgs := make([]Message, len(transcript))
	copy(msgs, transcript)

	toolSpecs := BuildToolSpecs(o.toolProvider)

	for iter := 0; iter < o.maxIterations; iter++ {
		turnLog := recomendachef.TurnLog{ChatID: chatID, Iteration: iter + 1, Timestamp: time.Now()}

		if b, err := json.Marshal(msgs); err == nil {
			turnLog.LLMInput = string(b)
		}

		slog.Info("ORCHESTRATOR: Sending transcript to LLM",
			"chat_id", chatID,
			"iteration", iter+1,
			"messages_count", len(msgs),
			"tools_count", len(toolSpecs),
		)

		res, err := o.llm.Invoke(ctx, Request{System: systemPrompt, Messages: msgs, Tools: toolSpecs})
		if err != nil {
			turnLog.Error = err.Error()
			o.logTurn(turnLog)
			slog.Error("ORCHESTRATOR: LLM invocation failed", "chat_id", chatID, "error", err)
			return o.failureMessage()
		}
		turnLog.LLMOutput = res

		slog.Info("ORCHESTRATOR: LLM response received",
			"chat_id", chatID,
			"iteration", iter+1,
			"content_length", len(res.Content),
			"tool_calls", len(res.ToolCalls),
		)

		// Final path: no tool calls, some text.
		if len(res.ToolCalls) == 0 {
			if res.Content == "" {
				turnLog.Error = "no tool calls and no final content"
				o.logTurn(turnLog)
				slog.Error("ORCHESTRATOR: Model returned nothing usable", "chat_id", chatID, "iteration", iter+1)
				return o.failureMessage()
			}
			o.logTurn(turnLog)
			return Message{Role: RoleAssistant, Content: res.Content}
		}

		// Tool-call path.
		calls := dedupeToolCalls(res.ToolCalls)
		if len(calls) < len(res.ToolCalls) {
			slog.Info("ORCHESTRATOR: Deduped tool calls", "requested", len(res.ToolCalls), "kept", len(calls))
		}

		msgs = append(msgs, Message{Role: RoleAssistant, Content: res.Content, ToolCalls: calls})

		var toolCallLogs []recomendachef.ToolCallLog
		for _, call := range calls {
			slog.Info("ORCHESTRATOR: Handling tool call", "name", call.Name, "iteration", iter+1)

			toolLog := recomendachef.ToolCallLog{Name: call.Name, Input: call.Args}

			result := o.runTool(ctx, call)
			if errText, ok := result["error"].(string); ok {
				toolLog.Error = errText
			} else {
				toolLog.Output = result
			}
			toolCallLogs = append(toolCallLogs, toolLog)

			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"error":"unserializable tool result"}`)
			}

			msgs = append(msgs, Message{
				Role:      RoleTool,
				Name:      call.Name,
				ToolUseID: call.ID,
				Content:   string(payload),
			})

			slog.Info("ORCHESTRATOR: Tool executed, appended result", "name", call.Name, "iteration", iter+1)
		}

		turnLog.ToolCalls = toolCallLogs
		o.logTurn(turnLog)
	}

	slog.Warn("ORCHESTRATOR: Iteration budget exhausted without final reply", "chat_id", chatID)
	return o.failureMessage()
}

// runTool executes one call. Tools never raise to the agent layer: every
// failure becomes a serializable error payload the model can react to.
func (o *Orchestrator) runTool(ctx context.Context, call ToolCall) map[string]any {
	tool, err := o.toolProvider.GetTool(call.Name)
	if err != nil {
		slog.Warn("ORCHESTRATOR: Unknown tool requested", "name", call.Name, "error", err)
		return map[string]any{"error": err.Error()}
	}

	result, err := tool.Run(ctx, call.Args)
	if err != nil {
		slog.Warn("ORCHESTRATOR: Tool run failed", "name", call.Name, "error", err)
		return map[string]any{"error": err.Error()}
	}
	return result
}

func (o *Orchestrator) failureMessage() Message {
	reply := o.FailureReply
	if reply == "" {
		reply = DefaultFailureReply
	}
	return Message{Role: RoleAssistant, Content: reply}
}

// dedupeToolCalls keeps only the first call per (name, args) pair. Models can
// be eager and request the same tool repeatedly in one response.
func dedupeToolCalls(calls []ToolCall) []ToolCall {
	seen := map[string]bool{}
	out := make([]ToolCall, 0, len(calls))
	for _, c := range calls {
		b, _ := json.Marshal(c.Args)
		key := c.Name + ":" + string(b)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func (o *Orchestrator) logTurn(turn recomendachef.TurnLog) {
	if o.logger != nil {
		if err := o.logger.LogTurn(turn); err != nil {
			slog.Error("Failed to log conversation turn", "error", err, "iteration", turn.Iteration)
		}
	}
}
