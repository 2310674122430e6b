package recomendachef

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ConversationLogger is the interface for recording orchestration turns.
type ConversationLogger interface {
	LogTurn(turn TurnLog) error
}

// NewConversationLogFilePath returns a file path based on a cleaned up model name or id
// so logs produced with different models are easy to tell apart.
func NewConversationLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// TurnLog represents a single iteration of the tool-orchestration loop for one chat turn.
type TurnLog struct {
	ChatID    int64         `json:"chat_id"`
	Iteration int           `json:"iteration"`
	Timestamp time.Time     `json:"timestamp"`
	LLMInput  string        `json:"llm_input,omitempty"`
	LLMOutput any           `json:"llm_output"`
	ToolCalls []ToolCallLog `json:"tool_calls,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ToolCallLog represents a tool execution within a turn.
type ToolCallLog struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Output map[string]any `json:"output"`
	Error  string         `json:"error,omitempty"`
}

// FileConversationLogger buffers turns and flushes them as one JSON document.
type FileConversationLogger struct {
	turns  []TurnLog
	writer io.Writer
}

func NewFileConversationLogger(writer io.Writer) *FileConversationLogger {
	return &FileConversationLogger{
		turns:  make([]TurnLog, 0),
		writer: writer,
	}
}

// LogTurn appends a turn to the buffer (does not flush immediately).
func (fcl *FileConversationLogger) LogTurn(turn TurnLog) error {
	fcl.turns = append(fcl.turns, turn)
	return nil
}

// Flush writes all accumulated turns to the writer.
func (fcl *FileConversationLogger) Flush() error {
	if fcl.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"conversation_session": map[string]any{
			"timestamp": time.Now(),
			"turns":     fcl.turns,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation log: %w", err)
	}

	if _, err := fcl.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write conversation log: %w", err)
	}

	fcl.turns = fcl.turns[:0]
	return nil
}

// NoOpConversationLogger discards all log entries.
type NoOpConversationLogger struct{}

func NewNoOpConversationLogger() *NoOpConversationLogger {
	return &NoOpConversationLogger{}
}

func (nop *NoOpConversationLogger) LogTurn(turn TurnLog) error {
	return nil
}

// StdoutConversationLogger writes each turn as a JSON line to stdout (for Lambda/CloudWatch).
type StdoutConversationLogger struct{}

func NewStdoutConversationLogger() *StdoutConversationLogger {
	return &StdoutConversationLogger{}
}

func (l *StdoutConversationLogger) LogTurn(turn TurnLog) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
