package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/briankw/theo/pkg/api"
)

const defaultMaxTopics = 5

// ConsolidatorConfig configures the daily consolidation job.
type ConsolidatorConfig struct {
	Model     string // summarization model
	UserName  string // speaker label for user turns
	BotName   string // speaker label for assistant turns
	MaxTopics int    // upper bound on summaries per day (default 5)
}

// Consolidator distills one day's turns into topic summaries and writes them
// into the summary store and the embedding index.
type Consolidator struct {
	turnlog  *TurnLog
	store    *SummaryStore
	index    *Index
	embed    EmbedFunc
	complete CompleteFunc
	cfg      ConsolidatorConfig

	now func() time.Time
}

// NewConsolidator wires a Consolidator from its collaborators.
func NewConsolidator(turnlog *TurnLog, store *SummaryStore, index *Index, embed EmbedFunc, complete CompleteFunc, cfg ConsolidatorConfig) *Consolidator {
	if cfg.MaxTopics <= 0 {
		cfg.MaxTopics = defaultMaxTopics
	}
	if cfg.UserName == "" {
		cfg.UserName = "User"
	}
	if cfg.BotName == "" {
		cfg.BotName = "Assistant"
	}
	return &Consolidator{
		turnlog:  turnlog,
		store:    store,
		index:    index,
		embed:    embed,
		complete: complete,
		cfg:      cfg,
		now:      time.Now,
	}
}

// BuildMemory consolidates yesterday's turns. Repeated calls within the same
// day are no-ops once a run has succeeded: the target date is fixed and the
// already-consolidated guard short-circuits.
func (c *Consolidator) BuildMemory(ctx context.Context) error {
	return c.build(ctx, Yesterday(c.now()), false)
}

// BuildMemoryFor re-runs consolidation for an explicit date, replacing any
// existing summaries for it.
func (c *Consolidator) BuildMemoryFor(ctx context.Context, date string) error {
	return c.build(ctx, date, true)
}

func (c *Consolidator) build(ctx context.Context, date string, force bool) error {
	if !force {
		n, err := c.store.CountForDate(ctx, date)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil // already consolidated
		}
	}

	turns, err := c.turnlog.Restore(ctx, date)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil // nothing to summarize
	}

	summaries := c.summarize(ctx, turns)
	if len(summaries) == 0 {
		// Malformed model output or an empty day of small talk. Either way
		// there is nothing to write, and the guard above won't suppress a
		// retry on the next cycle.
		return nil
	}

	// Defensive delete-then-insert: clears leftovers from a partially failed
	// earlier run before writing the fresh batch. Scoped strictly to date.
	existing, err := c.store.IDsByDate(ctx, date)
	if err != nil {
		return err
	}
	if err := c.index.Delete(ctx, existing...); err != nil {
		return err
	}
	if err := c.store.DeleteByDate(ctx, date); err != nil {
		return err
	}

	for _, ts := range summaries {
		id, err := c.store.NextID(ctx)
		if err != nil {
			return err
		}

		vec, err := c.embed(ctx, ts.Summary)
		if err != nil {
			return fmt.Errorf("embed summary %q: %w", ts.Topic, err)
		}
		if err := c.index.Upsert(ctx, id, vec, date, ts.Topic); err != nil {
			return err
		}
		if err := c.store.Upsert(ctx, &Summary{ID: id, Date: date, Topic: ts.Topic, Text: ts.Summary}); err != nil {
			return err
		}
	}

	log.Printf("[memory] consolidated %s: %d turns -> %d summaries", date, len(turns), len(summaries))
	return nil
}

type topicSummary struct {
	Topic   string `json:"topic"`
	Summary string `json:"summary"`
}

// summarize asks the model for topic/summary pairs for a day's transcript.
// Any failure degrades to an empty batch; a later cycle retries.
func (c *Consolidator) summarize(ctx context.Context, turns []*Turn) []topicSummary {
	transcript := c.transcript(turns)
	if transcript == "" {
		return nil
	}

	instruction := fmt.Sprintf(`You archive one day of conversation between %s (the user) and %s (the assistant).
Distill the transcript into topic summaries.
Rules:
- Output a JSON object of the form {"summaries": [{"topic": "...", "summary": "..."}]}.
- At most %d entries. Merge near-duplicate topics into one.
- Each summary must attribute statements to the speakers by name (%s, %s).
- Output only the JSON object, with no code fences or commentary.`,
		c.cfg.UserName, c.cfg.BotName, c.cfg.MaxTopics, c.cfg.UserName, c.cfg.BotName)

	out, err := c.complete(ctx, []api.Message{
		{Role: api.RoleDeveloper, Content: instruction},
		{Role: api.RoleUser, Content: transcript},
	}, c.cfg.Model)
	if err != nil {
		log.Printf("[memory] summarization call failed: %v", err)
		return nil
	}

	var parsed struct {
		Summaries []topicSummary `json:"summaries"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &parsed); err != nil {
		log.Printf("[memory] malformed summarization output: %v", err)
		return nil
	}

	summaries := parsed.Summaries[:0:len(parsed.Summaries)]
	for _, ts := range parsed.Summaries {
		if ts.Topic == "" || ts.Summary == "" {
			continue
		}
		summaries = append(summaries, ts)
	}
	if len(summaries) > c.cfg.MaxTopics {
		summaries = summaries[:c.cfg.MaxTopics]
	}
	return summaries
}

// transcript renders the day's turns with roles relabeled to speaker names.
// Non-conversational roles (injected hints) are left out.
func (c *Consolidator) transcript(turns []*Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case api.RoleUser:
			fmt.Fprintf(&b, "%s: %s\n", c.cfg.UserName, t.Content)
		case api.RoleAssistant:
			fmt.Fprintf(&b, "%s: %s\n", c.cfg.BotName, t.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
