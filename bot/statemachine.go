package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

type existenceChecker interface {
	ExistsByName(ctx context.Context, name string) bool
}

type stockDecrementer interface {
	DecrementQuantity(ctx context.Context, name string, amount float64) bool
}

// Machine drives the two-step "reduce stock" dialogue per chat. Outside an
// active phase it does not consume free-form text, so chat falls through to
// the agent path.
type Machine struct {
	snapshot existenceChecker
	gateway  stockDecrementer
	text     Text
	sessions *sessionStore
}

func NewMachine(snapshot existenceChecker, gateway stockDecrementer, text Text) *Machine {
	return &Machine{
		snapshot: snapshot,
		gateway:  gateway,
		text:     text,
		sessions: newSessionStore(),
	}
}

// Phase reports the chat's current dialogue phase.
func (m *Machine) Phase(chatID int64) Phase {
	return m.sessions.get(chatID).Phase
}

// StartUpdate begins the reduce-stock dialogue and asks for a product name.
func (m *Machine) StartUpdate(ctx context.Context, chatID int64) string {
	session := m.sessions.get(chatID)
	session.Phase = PhaseAwaitingProductName
	session.PendingProductName = ""
	slog.Info("MACHINE: Update dialogue started", "chat_id", chatID)
	return m.text.Replies.AskProduct
}

// Cancel aborts the dialogue from any state and confirms the cancellation.
func (m *Machine) Cancel(ctx context.Context, chatID int64) string {
	m.sessions.reset(chatID)
	slog.Info("MACHINE: Dialogue cancelled", "chat_id", chatID)
	return m.text.Replies.Cancelled
}

// HandleText advances the dialogue with the user's free text. handled is
// false when the chat is idle and the text belongs to the agent path.
func (m *Machine) HandleText(ctx context.Context, chatID int64, text string) (reply string, handled bool) {
	session := m.sessions.get(chatID)

	switch session.Phase {
	case PhaseAwaitingProductName:
		return m.receiveProductName(ctx, session, strings.TrimSpace(text)), true

	case PhaseAwaitingQuantity:
		return m.receiveQuantity(ctx, session, strings.TrimSpace(text)), true

	default:
		return "", false
	}
}

func (m *Machine) receiveProductName(ctx context.Context, session *Session, name string) string {
	if !m.snapshot.ExistsByName(ctx, name) {
		slog.Warn("MACHINE: Product not found, ending dialogue", "chat_id", session.ChatID, "name", name)
		m.sessions.reset(session.ChatID)
		return fmt.Sprintf(m.text.Replies.NotFound, name)
	}

	session.PendingProductName = name
	session.Phase = PhaseAwaitingQuantity
	slog.Info("MACHINE: Product found, asking for quantity", "chat_id", session.ChatID, "name", name)
	return fmt.Sprintf(m.text.Replies.AskQuantity, name)
}

func (m *Machine) receiveQuantity(ctx context.Context, session *Session, text string) string {
	quantity, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity < 0 {
		// Retry prompt; the dialogue stays in this phase, bounded only by
		// user patience.
		slog.Warn("MACHINE: Invalid quantity input", "chat_id", session.ChatID, "input", text)
		return m.text.Replies.InvalidQuantity
	}

	name := session.PendingProductName
	ok := m.gateway.DecrementQuantity(ctx, name, quantity)
	m.sessions.reset(session.ChatID)

	if !ok {
		slog.Error("MACHINE: Stock update failed", "chat_id", session.ChatID, "name", name, "amount", quantity)
		return fmt.Sprintf(m.text.Replies.UpdateFailed, name)
	}

	slog.Info("MACHINE: Stock updated", "chat_id", session.ChatID, "name", name, "amount", quantity)
	return fmt.Sprintf(m.text.Replies.UpdateConfirmed, name)
}
