package memory

import (
	"context"
	"errors"
	"time"

	"github.com/briankw/theo/pkg/api"
)

// DateLayout is the calendar-day partition key format.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a summary id has no record.
var ErrNotFound = errors.New("memory: not found")

// Turn is one conversational message, partitioned by calendar date.
// Saved marks whether the turn has been flushed to the turn log; it is
// transient and never persisted.
type Turn struct {
	Date    string
	Role    string
	Content string
	Saved   bool
}

// Summary is a distilled topic record derived from one day's turns.
type Summary struct {
	ID    int
	Date  string
	Topic string
	Text  string
}

// EmbedFunc produces a float32 embedding vector from text.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// CompleteFunc sends messages to a chat model and returns its text output.
// The consolidator and retriever depend on this instead of a concrete client
// so tests can script the model.
type CompleteFunc func(ctx context.Context, msgs []api.Message, model string) (string, error)

// Yesterday returns the partition key for the day before t.
func Yesterday(t time.Time) string {
	return t.AddDate(0, 0, -1).Format(DateLayout)
}
