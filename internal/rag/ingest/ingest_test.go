package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB/memoryDB"
)

type stubBlobStore struct {
	data map[string][]byte
}

func (s *stubBlobStore) Put(ctx context.Context, key string, data []byte) error {
	s.data[key] = data
	return nil
}

func (s *stubBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	d, ok := s.data[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return d, nil
}

func (s *stubBlobStore) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (s *stubEmbedder) ModelName() string { return "stub-embedder" }

func setup(t *testing.T) (*stubBlobStore, *store.InMemoryDocumentStore, *memoryDB.MemoryIndex) {
	t.Helper()
	return &stubBlobStore{data: map[string][]byte{}}, store.InitInMemoryDocumentStore(), memoryDB.NewMemoryIndex()
}

func pendingDoc(id string) docModel.Document {
	return docModel.Document{
		Id:      id,
		Title:   "Handbook",
		Level:   docModel.LevelMid,
		Active:  true,
		Status:  docModel.DocStatusPending,
		OwnerId: "user-1",
		BlobKey: "MID/2026/08/29/Handbook_x.txt",
	}
}

func TestRun_Success(t *testing.T) {
	ctx := context.Background()
	blobs, docs, idx := setup(t)

	doc := pendingDoc("doc-1")
	blobs.data[doc.BlobKey] = []byte(strings.Repeat("vacation policy text ", 200))
	if err := docs.SaveDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(blobs, docs, &stubEmbedder{}, idx)
	if err := p.Run(ctx, "doc-1"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, _ := docs.GetDocument(ctx, "doc-1")
	if got.Status != docModel.DocStatusIndexed {
		t.Fatalf("want INDEXED, got %s (%s)", got.Status, got.ErrorDetail)
	}
	if got.ChunkCount < 2 {
		t.Errorf("chunk count not recorded: %d", got.ChunkCount)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts=%d", got.Attempts)
	}
	if got.EmbeddingModel != "stub-embedder" {
		t.Errorf("embedding model not recorded: %s", got.EmbeddingModel)
	}

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, []docModel.Level{docModel.LevelMid}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("chunks not searchable after ingestion")
	}
}

func TestRun_MissingBlobFails(t *testing.T) {
	ctx := context.Background()
	blobs, docs, idx := setup(t)

	doc := pendingDoc("doc-1")
	if err := docs.SaveDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(blobs, docs, &stubEmbedder{}, idx)
	err := p.Run(ctx, "doc-1")
	if !errors.Is(err, docModel.ErrExtraction) {
		t.Fatalf("want extraction error, got %v", err)
	}

	got, _ := docs.GetDocument(ctx, "doc-1")
	if got.Status != docModel.DocStatusFailed {
		t.Errorf("want FAILED, got %s", got.Status)
	}
	if got.ErrorDetail == "" {
		t.Error("failure detail not recorded")
	}
}

func TestRun_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	blobs, docs, idx := setup(t)

	doc := pendingDoc("doc-1")
	blobs.data[doc.BlobKey] = []byte("some text that will chunk fine")
	if err := docs.SaveDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(blobs, docs, &stubEmbedder{err: errors.New("quota exhausted")}, idx)
	err := p.Run(ctx, "doc-1")
	if !errors.Is(err, docModel.ErrEmbedding) {
		t.Fatalf("want embedding error, got %v", err)
	}

	got, _ := docs.GetDocument(ctx, "doc-1")
	if got.Status != docModel.DocStatusFailed {
		t.Errorf("want FAILED, got %s", got.Status)
	}
}

func TestRun_AttemptCap(t *testing.T) {
	ctx := context.Background()
	blobs, docs, idx := setup(t)

	doc := pendingDoc("doc-1")
	doc.Attempts = config.MaxIngestAttempts
	if err := docs.SaveDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(blobs, docs, &stubEmbedder{}, idx)
	err := p.Run(ctx, "doc-1")
	if !errors.Is(err, docModel.ErrValidation) {
		t.Fatalf("want validation error at cap, got %v", err)
	}

	got, _ := docs.GetDocument(ctx, "doc-1")
	if got.Attempts != config.MaxIngestAttempts {
		t.Errorf("attempts must not grow past the cap, got %d", got.Attempts)
	}
}

func TestRun_ReingestReplacesChunks(t *testing.T) {
	ctx := context.Background()
	blobs, docs, idx := setup(t)

	doc := pendingDoc("doc-1")
	blobs.data[doc.BlobKey] = []byte(strings.Repeat("original content ", 200))
	if err := docs.SaveDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(blobs, docs, &stubEmbedder{}, idx)
	if err := p.Run(ctx, "doc-1"); err != nil {
		t.Fatal(err)
	}
	first, _ := docs.GetDocument(ctx, "doc-1")

	// shorter content on re-ingest, stale tail chunks must disappear
	blobs.data[doc.BlobKey] = []byte("short update")
	if err := p.Run(ctx, "doc-1"); err != nil {
		t.Fatal(err)
	}
	second, _ := docs.GetDocument(ctx, "doc-1")
	if second.ChunkCount >= first.ChunkCount {
		t.Fatalf("chunk count should shrink: %d -> %d", first.ChunkCount, second.ChunkCount)
	}

	matches, err := idx.Search(ctx, []float32{1, 0, 0}, []docModel.Level{docModel.LevelMid}, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != second.ChunkCount {
		t.Errorf("index holds %d chunks, document says %d", len(matches), second.ChunkCount)
	}
}
