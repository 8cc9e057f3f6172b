package chatctx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/briankw/theo/internal/memory"
)

func newTestSession(t *testing.T) (*Session, *memory.TurnLog) {
	t.Helper()
	db, err := memory.OpenDB(filepath.Join(t.TempDir(), "theo.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	turnlog := memory.NewTurnLog(db)
	return NewSession(turnlog), turnlog
}

func TestSessionAppendAndFlush(t *testing.T) {
	s, turnlog := newTestSession(t)
	ctx := context.Background()

	s.Append("user", "안녕!")
	s.Append("assistant", "안녕하세요, 브라이언님!")
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	for i, turn := range s.Turns() {
		if !turn.Saved {
			t.Errorf("turn %d not marked saved after flush", i)
		}
	}

	today := time.Now().Format(memory.DateLayout)
	persisted, err := turnlog.Restore(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(persisted))
	}

	// A second flush with nothing new writes nothing.
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	persisted, err = turnlog.Restore(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 2 {
		t.Fatalf("double flush persisted %d turns, want 2", len(persisted))
	}
}

func TestSessionRestore(t *testing.T) {
	s, turnlog := newTestSession(t)
	ctx := context.Background()
	today := time.Now().Format(memory.DateLayout)

	err := turnlog.Append(ctx, []*memory.Turn{
		{Date: today, Role: "user", Content: "earlier today"},
		{Date: today, Role: "assistant", Content: "yes, I remember"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() after restore = %d, want 2", s.Len())
	}

	// Restored turns count as saved; a flush writes nothing.
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	persisted, err := turnlog.Restore(ctx, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(persisted) != 2 {
		t.Fatalf("flush after restore persisted %d turns, want 2", len(persisted))
	}
}

func TestSessionMessagesWindowing(t *testing.T) {
	s, _ := newTestSession(t)

	s.Append("user", "first message that is fairly long for its size")
	s.Append("assistant", "second message that is also fairly long here")
	s.Append("user", "third")

	e := NewTokenEstimator()

	// Unlimited budget keeps everything.
	all := s.Messages(e, 0)
	if len(all) != 3 {
		t.Fatalf("Messages with no budget = %d, want 3", len(all))
	}

	// A tiny budget keeps only the newest turns.
	small := s.Messages(e, 15)
	if len(small) == 0 || len(small) >= 3 {
		t.Fatalf("Messages with tight budget = %d, want a strict suffix", len(small))
	}
	if small[len(small)-1].Content != "third" {
		t.Errorf("windowing dropped the newest turn, last = %q", small[len(small)-1].Content)
	}
}

func TestSessionMessagesRoles(t *testing.T) {
	s, _ := newTestSession(t)
	s.Append("user", "hi")
	s.Append("assistant", "hello")

	msgs := s.Messages(nil, 0)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("roles = [%s %s], want [user assistant]", msgs[0].Role, msgs[1].Role)
	}
}
