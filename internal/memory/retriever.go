package memory

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/briankw/theo/pkg/api"
)

// RetrieverConfig configures the query-time memory gate.
type RetrieverConfig struct {
	Model           string  // classifier/filter model
	TopK            int     // candidates fetched from the index (default 3)
	VectorThreshold float32 // minimum similarity for a candidate (default 0.7)
	FilterThreshold float64 // minimum filter probability to accept (default 0.6)
}

// Retriever decides whether a message needs historical memory and, if so,
// finds the best matching summary.
type Retriever struct {
	store    *SummaryStore
	index    *Index
	embed    EmbedFunc
	complete CompleteFunc
	cfg      RetrieverConfig
}

// NewRetriever wires a Retriever from its collaborators.
func NewRetriever(store *SummaryStore, index *Index, embed EmbedFunc, complete CompleteFunc, cfg RetrieverConfig) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.VectorThreshold <= 0 {
		cfg.VectorThreshold = 0.7
	}
	if cfg.FilterThreshold <= 0 {
		cfg.FilterThreshold = 0.6
	}
	return &Retriever{store: store, index: index, embed: embed, complete: complete, cfg: cfg}
}

// NeedsMemory asks whether the message references something from before
// today. Ambiguity resolves to true (favor recall); a call failure resolves
// to false so no spurious recall is injected on error.
func (r *Retriever) NeedsMemory(ctx context.Context, message string) bool {
	out, err := r.complete(ctx, []api.Message{
		{Role: api.RoleDeveloper, Content: "Answer with exactly TRUE or FALSE.\n" +
			"Does the user's message refer to something from a previous day — a past conversation, " +
			"a shared memory, or an event before today? If you are uncertain, answer TRUE."},
		{Role: api.RoleUser, Content: message},
	}, r.cfg.Model)
	if err != nil {
		log.Printf("[memory] needs-memory check failed: %v", err)
		return false
	}
	return strings.Contains(strings.ToUpper(out), "TRUE")
}

// Retrieve finds a past summary relevant to the message. The second return
// value reports whether one was found. It never returns an error: every
// failure along the way degrades to not-found.
func (r *Retriever) Retrieve(ctx context.Context, message string) (string, bool) {
	vec, err := r.embed(ctx, message)
	if err != nil {
		log.Printf("[memory] query embedding failed: %v", err)
		return "", false
	}

	matches, err := r.index.Query(ctx, vec, r.cfg.TopK)
	if err != nil {
		log.Printf("[memory] index query failed: %v", err)
		return "", false
	}

	for _, m := range matches {
		if m.Score < r.cfg.VectorThreshold {
			continue
		}

		sum, err := r.store.Get(ctx, m.ID)
		if err != nil {
			// An index entry without a store record means a torn
			// consolidation; skip it and try the next candidate.
			log.Printf("[memory] summary %d missing from store: %v", m.ID, err)
			continue
		}

		if p := r.relevance(ctx, message, sum.Text); p >= r.cfg.FilterThreshold {
			return sum.Text, true
		}
	}
	return "", false
}

// relevance estimates the probability that a memory answers the question.
// A call or parse failure counts as probability 0.
func (r *Retriever) relevance(ctx context.Context, message, memory string) float64 {
	prompt := fmt.Sprintf(`Question: %s
Memory: %s

Estimate the probability that the memory is a valid answer to the question.
Reply with a single number between 0 and 1, nothing else.`, message, memory)

	out, err := r.complete(ctx, []api.Message{
		{Role: api.RoleUser, Content: prompt},
	}, r.cfg.Model)
	if err != nil {
		log.Printf("[memory] relevance filter failed: %v", err)
		return 0
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return 0
	}
	p, err := strconv.ParseFloat(strings.Trim(fields[0], "[]()%,"), 64)
	if err != nil {
		log.Printf("[memory] unparseable relevance output %q", out)
		return 0
	}
	return p
}
