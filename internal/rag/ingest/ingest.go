package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/blobStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/metrics"
	"github.com/rchavali/ClearanceAPI/internal/rag/embedding"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

var logger *logger_i.Logger

// Runner drives one document through extract, chunk, embed and index.
// Retries always restart from the stored blob, never from a partial state.
type Runner interface {
	Run(ctx context.Context, documentId string) error
}

type pipeline struct {
	blobs    blobStore.Store
	docs     docModel.DocumentStore
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
}

func NewPipeline(blobs blobStore.Store, docs docModel.DocumentStore, embedder embedding.Embedder, index vectorDB.VectorIndex) Runner {
	logger = logger_i.NewLogger("document_ingestion")
	return &pipeline{blobs: blobs, docs: docs, embedder: embedder, index: index}
}

func (p *pipeline) Run(ctx context.Context, documentId string) error {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	doc, ok := p.docs.GetDocument(ctx, documentId)
	if !ok {
		log.Error("Document not found")
		return fmt.Errorf("%w: document %s not found", docModel.ErrValidation, documentId)
	}

	if doc.Attempts >= config.MaxIngestAttempts {
		log.Error("Ingestion attempt cap reached", "attempts", doc.Attempts)
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: attempt cap reached", docModel.ErrValidation))
	}

	doc.Attempts++
	doc.Status = docModel.DocStatusProcessing
	doc.ErrorDetail = ""
	doc.UpdatedTime = time.Now()
	if err := p.docs.SaveDocument(ctx, doc); err != nil {
		log.Error("Error marking document processing", "error", err)
		return fmt.Errorf("saving document: %w", err)
	}

	text, err := p.extract(ctx, &doc)
	if err != nil {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: %v", docModel.ErrExtraction, err))
	}

	chunks := PrepareChunks(text, doc)
	if len(chunks) == 0 {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: document produced no chunks", docModel.ErrExtraction))
	}
	log.Debug("Prepared chunks", "count", len(chunks))

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	vectors, err := p.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: %v", docModel.ErrEmbedding, err))
	}
	if len(vectors) != len(chunks) {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: got %d vectors for %d chunks", docModel.ErrEmbedding, len(vectors), len(chunks)))
	}

	if err := p.index.EnsureCollection(ctx); err != nil {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: %v", docModel.ErrStorage, err))
	}
	if err := p.index.ReplaceDocumentChunks(ctx, doc.Id, chunks, vectors); err != nil {
		return p.markFailed(ctx, &doc, fmt.Errorf("%w: %v", docModel.ErrStorage, err))
	}

	doc.Status = docModel.DocStatusIndexed
	doc.ChunkCount = len(chunks)
	doc.EmbeddingModel = p.embedder.ModelName()
	doc.UpdatedTime = time.Now()
	if err := p.docs.SaveDocument(ctx, doc); err != nil {
		log.Error("Error marking document indexed", "error", err)
		return fmt.Errorf("saving document: %w", err)
	}

	metrics.DocumentsIngested.Inc()
	log.Info("Document indexed", "chunks", len(chunks))
	return nil
}

// extract copies the blob to a temp file because both parsers want a path.
func (p *pipeline) extract(ctx context.Context, doc *docModel.Document) (string, error) {
	docType := getDocType(doc.BlobKey)
	if docType == docModel.ERR {
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(doc.BlobKey))
	}

	data, err := p.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		return "", fmt.Errorf("fetching blob: %w", err)
	}

	tmp, err := os.CreateTemp("", "ingest-*"+filepath.Ext(doc.BlobKey))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	doc.ContentType = docType
	return extractText(tmp.Name(), docType)
}

func (p *pipeline) markFailed(ctx context.Context, doc *docModel.Document, cause error) error {
	logger.Error("Ingestion failed", "documentId", doc.Id, "error", cause)

	doc.Status = docModel.DocStatusFailed
	doc.ErrorDetail = cause.Error()
	doc.UpdatedTime = time.Now()
	if err := p.docs.SaveDocument(ctx, *doc); err != nil {
		logger.Error("Error marking document failed", "error", err)
	}
	return cause
}
