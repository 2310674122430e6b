package bot

import "sync"

// Phase is the dialogue state of one chat's "reduce stock" flow.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingProductName
	PhaseAwaitingQuantity
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingProductName:
		return "awaiting_product_name"
	case PhaseAwaitingQuantity:
		return "awaiting_quantity"
	default:
		return "unknown"
	}
}

// Session is the per-chat transient dialogue state. It lives in memory only;
// durability across restarts is an explicit non-goal.
type Session struct {
	ChatID             int64
	Phase              Phase
	PendingProductName string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[int64]*Session{}}
}

// get returns the chat's session, creating an idle one on first interaction.
func (s *sessionStore) get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[chatID]
	if !ok {
		session = &Session{ChatID: chatID, Phase: PhaseIdle}
		s.sessions[chatID] = session
	}
	return session
}

// reset clears the chat back to idle with no pending product.
func (s *sessionStore) reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[chatID]; ok {
		session.Phase = PhaseIdle
		session.PendingProductName = ""
	}
}
