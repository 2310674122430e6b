package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recomendachef/agent"
	"recomendachef/inventory"
	"recomendachef/telegram"
)

// Transport delivers inbound updates and outbound replies keyed by chat id.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Converser is the tool-orchestration capability the free-form chat path uses.
type Converser interface {
	Converse(ctx context.Context, chatID int64, transcript []agent.Message) agent.Message
}

type inventoryLister interface {
	FetchVisible(ctx context.Context) []inventory.Item
}

// Bot routes inbound messages between the command handlers, the reduce-stock
// state machine, and the agent. It owns each chat's append-only transcript
// for the life of the process; no truncation policy is applied.
type Bot struct {
	transport   Transport
	machine     *Machine
	agent       Converser
	snapshot    inventoryLister
	text        Text
	pollTimeout int

	mu          sync.Mutex
	transcripts map[int64][]agent.Message
}

func New(transport Transport, machine *Machine, conv Converser, snapshot inventoryLister, text Text, pollTimeoutSec int) *Bot {
	return &Bot{
		transport:   transport,
		machine:     machine,
		agent:       conv,
		snapshot:    snapshot,
		text:        text,
		pollTimeout: pollTimeoutSec,
		transcripts: map[int64][]agent.Message{},
	}
}

// Run drives the long-polling loop until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("BOT: Starting long-polling loop", "poll_timeout_sec", b.pollTimeout)

	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := b.transport.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("BOT: Failed to fetch updates", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single inbound update. It is the entrypoint shared
// by the polling loop and the webhook handler.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	reply := b.route(ctx, chatID, update.Message.Text)
	if reply == "" {
		return
	}

	if err := b.transport.SendMessage(ctx, chatID, reply); err != nil {
		slog.Error("BOT: Failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) route(ctx context.Context, chatID int64, text string) string {
	if command, ok := parseCommand(text); ok {
		slog.Info("BOT: Command received", "chat_id", chatID, "command", command)
		switch command {
		case b.text.Commands.Start:
			return b.text.Replies.Greeting
		case b.text.Commands.Inventory:
			return b.inventoryReply(ctx)
		case b.text.Commands.Update:
			return b.machine.StartUpdate(ctx, chatID)
		case b.text.Commands.Cancel:
			return b.machine.Cancel(ctx, chatID)
		default:
			return ""
		}
	}

	if reply, handled := b.machine.HandleText(ctx, chatID, text); handled {
		return reply
	}

	return b.converse(ctx, chatID, text)
}

// converse appends the user's message to the chat's transcript, runs one
// agent turn, and appends the reply.
func (b *Bot) converse(ctx context.Context, chatID int64, text string) string {
	b.mu.Lock()
	b.transcripts[chatID] = append(b.transcripts[chatID], agent.Message{Role: agent.RoleUser, Content: text})
	transcript := make([]agent.Message, len(b.transcripts[chatID]))
	copy(transcript, b.transcripts[chatID])
	b.mu.Unlock()

	reply := b.agent.Converse(ctx, chatID, transcript)

	b.mu.Lock()
	b.transcripts[chatID] = append(b.transcripts[chatID], reply)
	b.mu.Unlock()

	return reply.Content
}

// inventoryReply formats the visible inventory for the /inventario command.
func (b *Bot) inventoryReply(ctx context.Context) string {
	items := b.snapshot.FetchVisible(ctx)
	if len(items) == 0 {
		return b.text.Replies.EmptyInventory
	}

	var sb strings.Builder
	sb.WriteString(b.text.Replies.InventoryHeader)
	for _, item := range items {
		expiry := "no expire"
		if item.ExpiresAt != nil {
			expiry = item.ExpiresAt.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "- %d) %s: %g %s || %s\n", item.ProductID, item.Name, item.Quantity, item.Unit, expiry)
	}
	return sb.String()
}

// parseCommand extracts the command token from "/token" or "/token@botname".
func parseCommand(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", false
	}
	token := strings.Fields(trimmed)[0][1:]
	if at := strings.Index(token, "@"); at >= 0 {
		token = token[:at]
	}
	return token, token != ""
}
