package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/briankw/theo/pkg/api"
)

// scriptedComplete returns canned outputs in order and counts calls.
type scriptedComplete struct {
	outputs []string
	errs    []error
	calls   int
	lastMsg []api.Message
}

func (s *scriptedComplete) fn(ctx context.Context, msgs []api.Message, model string) (string, error) {
	i := s.calls
	s.calls++
	s.lastMsg = msgs
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.outputs) {
		return s.outputs[i], nil
	}
	return "", errors.New("script exhausted")
}

func newTestConsolidator(t *testing.T, script *scriptedComplete, today string) (*Consolidator, *TurnLog, *SummaryStore, *Index) {
	t.Helper()
	db := newTestDB(t)
	turnlog := NewTurnLog(db)
	store := NewSummaryStore(db)
	index, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}

	c := NewConsolidator(turnlog, store, index, mockEmbedFunc, script.fn, ConsolidatorConfig{
		UserName: "브라이언",
		BotName:  "테오",
	})
	c.now = func() time.Time {
		ts, err := time.Parse(DateLayout, today)
		if err != nil {
			t.Fatal(err)
		}
		return ts
	}
	return c, turnlog, store, index
}

func seedDay(t *testing.T, turnlog *TurnLog, date string) {
	t.Helper()
	err := turnlog.Append(context.Background(), []*Turn{
		{Date: date, Role: "user", Content: "오늘 날씨 어때?"},
		{Date: date, Role: "assistant", Content: "서울은 맑습니다"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestBuildMemory(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [
			{"topic": "날씨", "summary": "브라이언이 날씨를 물었고 테오가 서울은 맑다고 답했다"},
			{"topic": "인사", "summary": "브라이언과 테오가 인사를 나눴다"}
		]}`,
	}}
	c, turnlog, store, index := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	if err := c.BuildMemory(context.Background()); err != nil {
		t.Fatal(err)
	}

	sums, err := store.ByDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("stored %d summaries, want 2", len(sums))
	}
	for _, sum := range sums {
		if !strings.Contains(sum.Text, "브라이언") && !strings.Contains(sum.Text, "테오") {
			t.Errorf("summary %q does not attribute by name", sum.Text)
		}
	}
	if index.Count() != 2 {
		t.Errorf("index holds %d vectors, want 2", index.Count())
	}

	// The transcript sent to the model uses speaker names, not roles.
	transcript := script.lastMsg[len(script.lastMsg)-1].Content
	if !strings.Contains(transcript, "브라이언: 오늘 날씨 어때?") {
		t.Errorf("transcript missing relabeled user turn: %q", transcript)
	}
	if !strings.Contains(transcript, "테오: 서울은 맑습니다") {
		t.Errorf("transcript missing relabeled assistant turn: %q", transcript)
	}
}

func TestBuildMemoryAlreadyConsolidated(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [{"topic": "날씨", "summary": "브라이언이 날씨를 물었다"}]}`,
		`{"summaries": [{"topic": "다른", "summary": "다른 내용"}]}`,
	}}
	c, turnlog, store, _ := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	ctx := context.Background()
	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}

	if script.calls != 1 {
		t.Errorf("model called %d times, want 1 (second run should short-circuit)", script.calls)
	}
	sums, err := store.ByDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Topic != "날씨" {
		t.Errorf("second run altered summaries: %+v", sums)
	}
}

func TestBuildMemoryEmptyDay(t *testing.T) {
	script := &scriptedComplete{}
	c, _, store, _ := newTestConsolidator(t, script, "2024-01-02")

	if err := c.BuildMemory(context.Background()); err != nil {
		t.Fatal(err)
	}
	if script.calls != 0 {
		t.Errorf("model called %d times for an empty day, want 0", script.calls)
	}
	n, err := store.CountForDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("empty day produced %d summaries", n)
	}
}

func TestBuildMemoryMalformedOutputRetries(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		"I could not summarize that, sorry!",
		`{"summaries": [{"topic": "날씨", "summary": "브라이언이 날씨를 물었다"}]}`,
	}}
	c, turnlog, store, _ := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	ctx := context.Background()

	// First run parses nothing and writes nothing.
	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}
	n, err := store.CountForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("malformed output produced %d summaries, want 0", n)
	}

	// With no summaries written, the next cycle retries and succeeds.
	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}
	n, err = store.CountForDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("retry produced %d summaries, want 1", n)
	}
}

func TestBuildMemoryClampsTopics(t *testing.T) {
	var entries []string
	for i := 0; i < 8; i++ {
		entries = append(entries, fmt.Sprintf(`{"topic": "t%d", "summary": "브라이언 s%d"}`, i, i))
	}
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [` + strings.Join(entries, ",") + `]}`,
	}}
	c, turnlog, store, index := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	if err := c.BuildMemory(context.Background()); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountForDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if n != defaultMaxTopics {
		t.Errorf("stored %d summaries, want clamp to %d", n, defaultMaxTopics)
	}
	if index.Count() != defaultMaxTopics {
		t.Errorf("indexed %d vectors, want %d", index.Count(), defaultMaxTopics)
	}
}

func TestBuildMemoryForReplaces(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [
			{"topic": "a", "summary": "브라이언 a"},
			{"topic": "b", "summary": "테오 b"}
		]}`,
		`{"summaries": [{"topic": "c", "summary": "브라이언 c"}]}`,
	}}
	c, turnlog, store, index := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	ctx := context.Background()
	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}

	// An explicit rebuild bypasses the guard and replaces the batch.
	if err := c.BuildMemoryFor(ctx, "2024-01-01"); err != nil {
		t.Fatal(err)
	}

	sums, err := store.ByDate(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Topic != "c" {
		t.Fatalf("rebuild left %+v, want only topic c", sums)
	}
	if index.Count() != 1 {
		t.Errorf("index holds %d vectors after rebuild, want 1", index.Count())
	}
}

func TestBuildMemoryDateIsolation(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [{"topic": "new", "summary": "브라이언 new"}]}`,
	}}
	c, turnlog, store, _ := newTestConsolidator(t, script, "2024-01-03")
	seedDay(t, turnlog, "2024-01-02")

	ctx := context.Background()
	if err := store.Upsert(ctx, &Summary{ID: 99, Date: "2024-01-01", Topic: "old", Text: "old day"}); err != nil {
		t.Fatal(err)
	}

	if err := c.BuildMemory(ctx); err != nil {
		t.Fatal(err)
	}

	// Consolidating 2024-01-02 must not touch 2024-01-01 records.
	if _, err := store.Get(ctx, 99); err != nil {
		t.Errorf("other day's summary was removed: %v", err)
	}
}

func TestSummarizeFiltersEmptyEntries(t *testing.T) {
	script := &scriptedComplete{outputs: []string{
		`{"summaries": [
			{"topic": "", "summary": "no topic"},
			{"topic": "ok", "summary": ""},
			{"topic": "good", "summary": "브라이언 good"}
		]}`,
	}}
	c, turnlog, store, _ := newTestConsolidator(t, script, "2024-01-02")
	seedDay(t, turnlog, "2024-01-01")

	if err := c.BuildMemory(context.Background()); err != nil {
		t.Fatal(err)
	}
	sums, err := store.ByDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 || sums[0].Topic != "good" {
		t.Fatalf("stored %+v, want only the complete entry", sums)
	}
}
