package domain

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn half in the conversation transcript.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ConversationState is the per-session memory the pipeline reads before and
// updates after each turn. It is a plain value owned by the caller between
// invocations; within a turn it is mutated only by the orchestrator.
type ConversationState struct {
	Messages    []Message     `json:"messages"`
	LastPlan    *Plan         `json:"last_plan,omitempty"`
	LastResults []TrailRecord `json:"last_results,omitempty"`
}

// HasPriorResults reports whether a previous recommend/refine turn produced
// a non-empty result set.
func (s *ConversationState) HasPriorResults() bool {
	return len(s.LastResults) > 0
}

// Append adds one message to the transcript. History grows monotonically;
// it is never truncated within a session.
func (s *ConversationState) Append(role, text string) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text})
}

// SetResults updates the plan and result set together. The two fields are
// only ever written as a pair so a failed turn can never leave the state
// half updated.
func (s *ConversationState) SetResults(plan Plan, results []TrailRecord) {
	s.LastPlan = &plan
	s.LastResults = results
}

// Session binds a ConversationState to an id and a lock. The hosting UI
// serializes turns within a session, so the lock only matters for hosts
// that cannot guarantee that (for example raw HTTP clients).
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state ConversationState
}

func NewSession(id string) *Session {
	return &Session{ID: id, CreatedAt: time.Now()}
}

// WithState runs fn while holding the session lock, giving fn exclusive
// access to the state for the duration of one turn.
func (s *Session) WithState(fn func(state *ConversationState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Snapshot returns a shallow copy of the state for read-only presentation.
func (s *Session) Snapshot() ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionStore keeps per-session conversation state. Implementations must
// isolate sessions from each other; nothing else in the core holds mutable
// cross-session state.
type SessionStore interface {
	GetOrCreate(id string) *Session
	Get(id string) (*Session, bool)
	Delete(id string) bool
	Len() int
}

// TurnRecord is the archived trace of one completed turn.
type TurnRecord struct {
	ID           uuid.UUID
	SessionID    string
	Intent       Intent
	UserText     string
	ResponseText string
	ResultCount  int
	Degraded     bool
	CreatedAt    time.Time
}

// TurnArchive persists completed turns for offline analysis.
type TurnArchive interface {
	Record(ctx context.Context, turn *TurnRecord) error
	RecentBySession(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
}

// TurnSink accepts completed turns for asynchronous archival. Enqueue must
// never block the chat path.
type TurnSink interface {
	Enqueue(turn TurnRecord)
}
