package chatctx

import (
	"context"
	"sync"
	"time"

	"github.com/briankw/theo/internal/memory"
	"github.com/briankw/theo/pkg/api"
)

// Session holds the running transcript of the current day. The turn log is
// the system of record; the session is the working copy, reconcilable at any
// time by replaying today's log.
//
// One mutex serializes every mutation: request-path appends and the periodic
// flush can never interleave their handling of the saved flags. There is at
// most one conversation per process, so nothing finer-grained is needed.
type Session struct {
	mu      sync.Mutex
	turnlog *memory.TurnLog
	turns   []*memory.Turn

	now func() time.Time
}

// NewSession creates an empty Session over the given turn log.
func NewSession(turnlog *memory.TurnLog) *Session {
	return &Session{turnlog: turnlog, now: time.Now}
}

// Restore seeds the session with today's persisted turns. Call once at
// startup, before serving requests.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, err := s.turnlog.Restore(ctx, s.today())
	if err != nil {
		return err
	}
	s.turns = turns
	return nil
}

// Append adds an unsaved turn stamped with today's date.
func (s *Session) Append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, &memory.Turn{
		Date:    s.today(),
		Role:    role,
		Content: content,
	})
}

// Flush persists any unsaved turns. On failure the turns stay unsaved and the
// next flush retries them.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.turnlog.Append(ctx, s.turns)
}

// Len returns the number of turns in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Turns returns a snapshot of the session's turns.
func (s *Session) Turns() []*memory.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*memory.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Messages renders the transcript as chat messages, windowed to the token
// budget: the newest turns that fit are kept, oldest are dropped first.
func (s *Session) Messages(estimator *TokenEstimator, maxTokens int) []api.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]api.Message, len(s.turns))
	for i, t := range s.turns {
		msgs[i] = api.Message{Role: t.Role, Content: t.Content}
	}
	if maxTokens <= 0 || estimator == nil {
		return msgs
	}

	cutoff := len(msgs)
	used := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		tokens := estimator.EstimateMessages(msgs[i : i+1])
		if used+tokens > maxTokens {
			break
		}
		used += tokens
		cutoff = i
	}
	return msgs[cutoff:]
}

func (s *Session) today() string {
	return s.now().Format(memory.DateLayout)
}
