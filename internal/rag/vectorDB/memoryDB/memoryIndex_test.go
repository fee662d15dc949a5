package memoryDB

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/rchavali/ClearanceAPI/internal/access"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

func seedChunk(id, docId string, ordinal int, level docModel.Level) docModel.DocChunk {
	return docModel.DocChunk{
		ChunkId:    id,
		DocumentId: docId,
		Ordinal:    ordinal,
		Text:       "chunk " + id,
		Level:      level,
		Active:     true,
	}
}

func vec(seed float32) []float32 {
	return []float32{seed, 1 - seed, 0.5}
}

func TestSearch_FilteringSoundness(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	rng := rand.New(rand.NewSource(42))

	// Documents spread across every level.
	for d := 0; d < 40; d++ {
		level := docModel.LevelOrder[d%len(docModel.LevelOrder)]
		docId := fmt.Sprintf("doc-%02d", d)
		var chunks []docModel.DocChunk
		var vectors [][]float32
		for c := 0; c < 3; c++ {
			chunks = append(chunks, seedChunk(fmt.Sprintf("%s-c%d", docId, c), docId, c, level))
			vectors = append(vectors, vec(rng.Float32()))
		}
		if err := idx.ReplaceDocumentChunks(ctx, docId, chunks, vectors); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	roles := []access.Role{access.RoleGuest, access.RoleEmployee, access.RoleManager, access.RoleCEO, "UNKNOWN"}
	for _, role := range roles {
		allowed := access.Resolve(role)
		for q := 0; q < 25; q++ {
			matches, err := idx.Search(ctx, vec(rng.Float32()), allowed, 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(allowed) == 0 && len(matches) != 0 {
				t.Fatalf("role %s has empty clearance but got %d matches", role, len(matches))
			}
			for _, m := range matches {
				if !access.Allowed(role, m.Chunk.Level) {
					t.Fatalf("role %s received chunk at level %s", role, m.Chunk.Level)
				}
			}
		}
	}
}

func TestSearch_TieBreakByChunkId(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	// Identical vectors force identical scores.
	same := []float32{0.3, 0.3, 0.3}
	chunks := []docModel.DocChunk{
		seedChunk("ccc", "doc-1", 0, docModel.LevelLow),
		seedChunk("aaa", "doc-1", 1, docModel.LevelLow),
		seedChunk("bbb", "doc-1", 2, docModel.LevelLow),
	}
	if err := idx.ReplaceDocumentChunks(ctx, "doc-1", chunks, [][]float32{same, same, same}); err != nil {
		t.Fatal(err)
	}

	matches, err := idx.Search(ctx, same, []docModel.Level{docModel.LevelLow}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"aaa", "bbb", "ccc"}
	for i, m := range matches {
		if m.Chunk.ChunkId != want[i] {
			t.Errorf("position %d: got %s, want %s", i, m.Chunk.ChunkId, want[i])
		}
	}
}

func TestReplace_AtomicUnderConcurrentSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	levels := []docModel.Level{docModel.LevelLow}

	buildSet := func(gen string, n int) ([]docModel.DocChunk, [][]float32) {
		var chunks []docModel.DocChunk
		var vectors [][]float32
		for i := 0; i < n; i++ {
			c := seedChunk(fmt.Sprintf("%s-%d", gen, i), "doc-x", i, docModel.LevelLow)
			c.DocumentTitle = gen
			chunks = append(chunks, c)
			vectors = append(vectors, []float32{1, 0, 0})
		}
		return chunks, vectors
	}

	oldChunks, oldVecs := buildSet("old", 4)
	if err := idx.ReplaceDocumentChunks(ctx, "doc-x", oldChunks, oldVecs); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			matches, err := idx.Search(ctx, []float32{1, 0, 0}, levels, 10)
			if err != nil {
				t.Errorf("search failed: %v", err)
				return
			}
			seen := map[string]bool{}
			for _, m := range matches {
				seen[m.Chunk.DocumentTitle] = true
			}
			if seen["old"] && seen["new"] {
				t.Error("search observed a mixed chunk set during replace")
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		gen := "old"
		if i%2 == 1 {
			gen = "new"
		}
		chunks, vecs := buildSet(gen, 4)
		if err := idx.ReplaceDocumentChunks(ctx, "doc-x", chunks, vecs); err != nil {
			t.Fatal(err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestPurge_ReclassificationIsolation(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	chunks := []docModel.DocChunk{seedChunk("c-1", "doc-r", 0, docModel.LevelLow)}
	if err := idx.ReplaceDocumentChunks(ctx, "doc-r", chunks, [][]float32{{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.PurgeDocument(ctx, "doc-r"); err != nil {
		t.Fatal(err)
	}

	// Re-ingest at a higher level: old LOW chunks must be fully absent.
	reclassified := []docModel.DocChunk{seedChunk("c-2", "doc-r", 0, docModel.LevelHigh)}
	if err := idx.ReplaceDocumentChunks(ctx, "doc-r", reclassified, [][]float32{{1, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, []docModel.Level{docModel.LevelLow}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Fatalf("stale LOW chunks leaked after reclassification: %d matches", len(matches))
	}
}

func TestSearch_InactiveChunksExcluded(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	active := seedChunk("c-a", "doc-1", 0, docModel.LevelLow)
	inactive := seedChunk("c-b", "doc-1", 1, docModel.LevelLow)
	inactive.Active = false

	if err := idx.ReplaceDocumentChunks(ctx, "doc-1", []docModel.DocChunk{active, inactive}, [][]float32{{1, 0, 0}, {1, 0, 0}}); err != nil {
		t.Fatal(err)
	}

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, []docModel.Level{docModel.LevelLow}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Chunk.ChunkId != "c-a" {
		t.Fatalf("expected only the active chunk, got %+v", matches)
	}
}
