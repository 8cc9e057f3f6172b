package memory

import (
	"context"
	"testing"
)

func TestIndexUpsertAndQuery(t *testing.T) {
	ix, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := ix.Upsert(ctx, 1, unitVec(0), "2024-01-01", "여행"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(ctx, 2, unitVec(1), "2024-01-01", "날씨"); err != nil {
		t.Fatal(err)
	}
	if ix.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ix.Count())
	}

	matches, err := ix.Query(ctx, unitVec(0), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Fatalf("Query returned %d matches, want 2", len(matches))
	}
	if matches[0].ID != 1 {
		t.Errorf("best match id = %d, want 1", matches[0].ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not sorted by descending score")
	}
	if matches[0].Score < 0.99 {
		t.Errorf("identical vector similarity = %f, want ~1.0", matches[0].Score)
	}
	if matches[0].Date != "2024-01-01" || matches[0].Topic != "여행" {
		t.Errorf("match metadata = %s/%s, want 2024-01-01/여행", matches[0].Date, matches[0].Topic)
	}
}

func TestIndexUpsertOverwrites(t *testing.T) {
	ix, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := ix.Upsert(ctx, 1, unitVec(0), "2024-01-01", "old"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(ctx, 1, unitVec(1), "2024-01-02", "new"); err != nil {
		t.Fatal(err)
	}
	if ix.Count() != 1 {
		t.Fatalf("Count() after overwrite = %d, want 1", ix.Count())
	}

	matches, err := ix.Query(ctx, unitVec(1), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Topic != "new" {
		t.Fatalf("Query after overwrite = %+v, want the new entry", matches)
	}
}

func TestIndexQueryEmpty(t *testing.T) {
	ix, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Query(context.Background(), unitVec(0), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("Query on empty index returned %d matches", len(matches))
	}
}

func TestIndexQueryClampsTopK(t *testing.T) {
	ix, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := ix.Upsert(ctx, 1, unitVec(0), "2024-01-01", "only"); err != nil {
		t.Fatal(err)
	}

	// Asking for more neighbors than entries must not error.
	matches, err := ix.Query(ctx, unitVec(0), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("Query returned %d matches, want 1", len(matches))
	}
}

func TestIndexDelete(t *testing.T) {
	ix, err := NewIndexInMemory(mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := ix.Upsert(ctx, 1, unitVec(0), "2024-01-01", "a"); err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(ctx, 2, unitVec(1), "2024-01-01", "b"); err != nil {
		t.Fatal(err)
	}

	if err := ix.Delete(ctx); err != nil {
		t.Fatalf("Delete with no ids should be a no-op, got %v", err)
	}
	if ix.Count() != 2 {
		t.Fatalf("Count() after empty delete = %d, want 2", ix.Count())
	}

	if err := ix.Delete(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if ix.Count() != 1 {
		t.Fatalf("Count() after delete = %d, want 1", ix.Count())
	}
}

func TestIndexPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ix, err := NewIndex(dir, mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.Upsert(ctx, 1, unitVec(0), "2024-01-01", "여행"); err != nil {
		t.Fatal(err)
	}

	// Reopen from the same directory.
	reopened, err := NewIndex(dir, mockEmbedFunc)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Count() != 1 {
		t.Fatalf("reopened Count() = %d, want 1", reopened.Count())
	}
}
