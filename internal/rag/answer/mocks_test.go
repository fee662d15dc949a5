package answer

import (
	"context"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/rag/llm"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
)

type mockEmbedder struct {
	embedFn func(ctx context.Context, query string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return m.embedFn(ctx, query)
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.embedFn(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) ModelName() string { return "mock-embedder" }

type mockIndex struct {
	searchFn func(ctx context.Context, vector []float32, allowed []docModel.Level, k int) ([]vectorDB.ChunkMatch, error)
	calls    int
}

func (m *mockIndex) Search(ctx context.Context, vector []float32, allowed []docModel.Level, k int) ([]vectorDB.ChunkMatch, error) {
	m.calls++
	return m.searchFn(ctx, vector, allowed, k)
}

func (m *mockIndex) ReplaceDocumentChunks(ctx context.Context, documentId string, chunks []docModel.DocChunk, vectors [][]float32) error {
	return nil
}

func (m *mockIndex) PurgeDocument(ctx context.Context, documentId string) error { return nil }
func (m *mockIndex) EnsureCollection(ctx context.Context) error                 { return nil }

type mockProvider struct {
	generateFn func(ctx context.Context, profile llm.Profile, query string, contextChunks []string, history []string) (*llm.Result, error)
}

func (m *mockProvider) Generate(ctx context.Context, profile llm.Profile, query string, contextChunks []string, history []string) (*llm.Result, error) {
	return m.generateFn(ctx, profile, query, contextChunks, history)
}

type recordingSink struct {
	mu       sync.Mutex
	messages []chatModel.Message
	records  []chatModel.AuditRecord
	history  []string
}

func (r *recordingSink) RecentHistory(ctx context.Context, sessionId string, ownerId string, n int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history, nil
}

func (r *recordingSink) RecordExchange(ctx context.Context, sessionId string, ownerId string, message chatModel.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSink) Record(ctx context.Context, record chatModel.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}
