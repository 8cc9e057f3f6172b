package memory

import (
	"context"
	"hash/fnv"
	"math"
	"path/filepath"
	"testing"
	"time"
)

// mockEmbedFunc creates deterministic embedding vectors from text hashing.
// Produces a 64-dimensional unit vector based on FNV hash.
func mockEmbedFunc(ctx context.Context, text string) ([]float32, error) {
	const dims = 64
	vec := make([]float32, dims)
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	for i := range vec {
		bits := seed ^ (uint64(i) * 0x9E3779B97F4A7C15)
		vec[i] = float32(bits%1000) / 1000.0
	}

	unitVector(vec)
	return vec, nil
}

// unitVec returns a unit vector pointing along the given axis, useful when a
// test needs exact similarity scores.
func unitVec(axis int) []float32 {
	vec := make([]float32, 8)
	vec[axis] = 1
	return vec
}

func unitVector(vec []float32) {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "theo.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestYesterday(t *testing.T) {
	// Month and year rollovers must follow the calendar.
	cases := map[string]string{
		"2024-01-02": "2024-01-01",
		"2024-03-01": "2024-02-29",
		"2024-01-01": "2023-12-31",
	}
	for today, want := range cases {
		ts, err := time.Parse(DateLayout, today)
		if err != nil {
			t.Fatal(err)
		}
		if got := Yesterday(ts); got != want {
			t.Errorf("Yesterday(%s) = %s, want %s", today, got, want)
		}
	}
}
