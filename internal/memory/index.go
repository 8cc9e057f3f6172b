package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
)

// Match is a nearest-neighbor hit from the embedding index.
type Match struct {
	ID    int
	Score float32
	Date  string
	Topic string
}

// Index is the nearest-neighbor index over summary embeddings, keyed by the
// summary id. It stores raw scores only; relevance thresholds are applied by
// callers.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates a persistent Index backed by chromem-go.
func NewIndex(persistDir string, embed EmbedFunc) (*Index, error) {
	db, err := chromem.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("create persistent DB: %w", err)
	}
	return newIndex(db, embed)
}

// NewIndexInMemory creates an in-memory Index for testing.
func NewIndexInMemory(embed EmbedFunc) (*Index, error) {
	return newIndex(chromem.NewDB(), embed)
}

func newIndex(db *chromem.DB, embed EmbedFunc) (*Index, error) {
	col, err := db.GetOrCreateCollection("summaries", nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}
	return &Index{db: db, collection: col}, nil
}

// Upsert inserts or overwrites the vector for a summary id.
func (ix *Index) Upsert(ctx context.Context, id int, vec []float32, date, topic string) error {
	key := strconv.Itoa(id)

	// Drop any existing entry first so re-consolidation overwrites cleanly.
	_ = ix.collection.Delete(ctx, nil, nil, key)

	doc := chromem.Document{
		ID:        key,
		Content:   topic,
		Embedding: vec,
		Metadata: map[string]string{
			"date":  date,
			"topic": topic,
		},
	}
	if err := ix.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document %d: %w", id, err)
	}
	return nil
}

// Query returns up to topK nearest neighbors by similarity, descending.
func (ix *Index) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 3
	}

	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := ix.collection.QueryEmbedding(ctx, vec, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		id, err := strconv.Atoi(r.ID)
		if err != nil {
			continue
		}
		matches = append(matches, Match{
			ID:    id,
			Score: r.Similarity,
			Date:  r.Metadata["date"],
			Topic: r.Metadata["topic"],
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// Delete removes entries by id. Deleting an empty id list is a no-op.
func (ix *Index) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = strconv.Itoa(id)
	}
	if err := ix.collection.Delete(ctx, nil, nil, keys...); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Count returns the number of indexed summaries.
func (ix *Index) Count() int {
	return ix.collection.Count()
}
