package session

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// HistoryLimit caps the per-session message history; oldest entries are
	// dropped first.
	HistoryLimit = 20

	// IdleTimeout is how long a session survives without activity.
	IdleTimeout = 30 * time.Minute

	RoleUser      = "cliente"
	RoleAssistant = "asistente"
)

// Entry is one remembered message of a conversation.
type Entry struct {
	Role string
	Text string
	At   time.Time
}

// Session is the short-lived conversational state for one user. It is a
// convenience only; the cart itself is the record of truth, so losing
// sessions on restart is acceptable.
type Session struct {
	UserID       string
	ActiveCartID uint // 0 = none
	History      []Entry
	LastActivity time.Time
}

// Store is the session registry. The in-memory implementation below is the
// default; the interface exists so a production deployment can back it with
// an external cache without touching router logic.
type Store interface {
	GetOrCreate(userID string) Session
	AppendHistory(userID, role, text string)
	SetActiveCart(userID string, cartID uint)
	Sweep() int
}

// MemoryStore keeps sessions in a process-local map. Concurrent messages
// from the same user race on read-modify-write, last write wins; WhatsApp
// clients are effectively single-threaded per sender, so that is accepted.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	timeout  time.Duration
}

func NewMemoryStore(timeout time.Duration) *MemoryStore {
	if timeout <= 0 {
		timeout = IdleTimeout
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// GetOrCreate returns a snapshot of the user's session, creating it on first
// contact. Every access refreshes LastActivity.
func (s *MemoryStore) GetOrCreate(userID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.touch(userID)
	snapshot := *sess
	snapshot.History = append([]Entry(nil), sess.History...)
	return snapshot
}

func (s *MemoryStore) AppendHistory(userID, role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.touch(userID)
	sess.History = append(sess.History, Entry{Role: role, Text: text, At: time.Now()})
	if len(sess.History) > HistoryLimit {
		sess.History = sess.History[len(sess.History)-HistoryLimit:]
	}
}

func (s *MemoryStore) SetActiveCart(userID string, cartID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(userID).ActiveCartID = cartID
}

// Sweep purges sessions idle past the timeout and returns how many it
// removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.timeout)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) touch(userID string) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{UserID: userID}
		s.sessions[userID] = sess
	}
	sess.LastActivity = time.Now()
	return sess
}

// StartSweeper runs Sweep on a fixed interval until ctx is cancelled,
// decoupled from request handling.
func StartSweeper(ctx context.Context, store Store, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					log.Printf("[SESSION] swept %d expired session(s)", n)
				}
			}
		}
	}()
}
