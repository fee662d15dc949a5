package vectorDB

import (
	"context"

	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

type ChunkMatch struct {
	Chunk docModel.DocChunk
	Score float32
}

// VectorIndex is the chunk store contract. The central invariant lives in
// Search: level and active filtering happen inside the same operation that
// ranks by similarity, so a chunk outside allowedLevels is never materialized
// into application memory, even transiently.
type VectorIndex interface {
	// Search returns up to k matches restricted to allowedLevels and active
	// chunks, ranked by cosine similarity. Equal scores tie-break by chunk id
	// ascending so results are deterministic. An empty allowedLevels always
	// yields zero matches.
	Search(ctx context.Context, queryVector []float32, allowedLevels []docModel.Level, k int) ([]ChunkMatch, error)

	// ReplaceDocumentChunks atomically replaces the full chunk set of one
	// document. Readers see the old set or the new set, never a mix.
	ReplaceDocumentChunks(ctx context.Context, documentId string, chunks []docModel.DocChunk, vectors [][]float32) error

	// PurgeDocument removes every chunk of the document from retrieval.
	// Used for delete, deactivate and reclassify; other documents' chunks
	// are untouched.
	PurgeDocument(ctx context.Context, documentId string) error

	EnsureCollection(ctx context.Context) error
}
