package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

type entry struct {
	chunk  docModel.DocChunk
	vector []float32
}

// MemoryIndex is the in-process fallback when qdrant is offline. Chunk sets
// are keyed by document and swapped whole under one write lock, so a reader
// sees either the fully old or fully new set of a document, never a mix.
type MemoryIndex struct {
	mu     *sync.RWMutex
	byDoc  map[string][]entry
	logger *logger_i.Logger
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		mu:     new(sync.RWMutex),
		byDoc:  make(map[string][]entry),
		logger: logger_i.NewLogger("InMem VectorIndex"),
	}
}

// Search filters by level and active flag before any candidate is scored or
// collected - the permitted-set predicate is part of the scan itself.
func (m *MemoryIndex) Search(ctx context.Context, queryVector []float32, allowedLevels []docModel.Level, k int) ([]vectorDB.ChunkMatch, error) {
	if len(allowedLevels) == 0 || k <= 0 {
		return nil, nil
	}

	allowed := make(map[docModel.Level]bool, len(allowedLevels))
	for _, l := range allowedLevels {
		allowed[l] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []vectorDB.ChunkMatch
	for _, entries := range m.byDoc {
		for _, e := range entries {
			if !e.chunk.Active || !allowed[e.chunk.Level] {
				continue
			}
			matches = append(matches, vectorDB.ChunkMatch{
				Chunk: e.chunk,
				Score: cosine(queryVector, e.vector),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.ChunkId < matches[j].Chunk.ChunkId
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *MemoryIndex) ReplaceDocumentChunks(ctx context.Context, documentId string, chunks []docModel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	entries := make([]entry, len(chunks))
	for i := range chunks {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		entries[i] = entry{chunk: chunks[i], vector: vec}
	}

	m.mu.Lock()
	m.byDoc[documentId] = entries
	m.mu.Unlock()

	m.logger.Debug("Replaced document chunks", "documentId", documentId, "count", len(entries))
	return nil
}

func (m *MemoryIndex) PurgeDocument(ctx context.Context, documentId string) error {
	m.mu.Lock()
	delete(m.byDoc, documentId)
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) EnsureCollection(ctx context.Context) error {
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
