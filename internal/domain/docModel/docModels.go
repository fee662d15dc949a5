package docModel

import (
	"context"
	"errors"
	"time"
)

// Level is the classification attached to a document and inherited by its chunks.
// Ordering is LOW < MID < HIGH < VERY_HIGH.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMid      Level = "MID"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
)

// LevelOrder lists every level from least to most restricted.
var LevelOrder = []Level{LevelLow, LevelMid, LevelHigh, LevelVeryHigh}

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMid, LevelHigh, LevelVeryHigh:
		return true
	}
	return false
}

// Rank returns the position of the level in LevelOrder, -1 for unknown levels.
func (l Level) Rank() int {
	for i, lv := range LevelOrder {
		if lv == l {
			return i
		}
	}
	return -1
}

type DocStatus string

const (
	DocStatusPending    DocStatus = "PENDING"
	DocStatusProcessing DocStatus = "PROCESSING"
	DocStatusIndexed    DocStatus = "INDEXED"
	DocStatusFailed     DocStatus = "FAILED"
)

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// Document status is mutated only by the ingestion pipeline. An inactive or
// failed document contributes zero chunks to any query result.
type Document struct {
	Id             string    `json:"id"`
	Title          string    `json:"title"`
	Level          Level     `json:"security_level"`
	Active         bool      `json:"active"`
	Status         DocStatus `json:"status"`
	OwnerId        string    `json:"owner_id"`
	BlobKey        string    `json:"blob_key"`
	ContentType    DocType   `json:"content_type"`
	ChunkCount     int       `json:"chunk_count"`
	ErrorDetail    string    `json:"error_detail,omitempty"`
	Attempts       int       `json:"attempts"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	CreatedTime    time.Time `json:"created_time"`
	UpdatedTime    time.Time `json:"updated_time"`
}

// DocChunk carries the classification duplicated from its document at write
// time so query-time filtering needs no join. The level is immutable once
// written - reclassification deletes and re-embeds, never edits in place.
type DocChunk struct {
	ChunkId       string `json:"chunk_id"`
	DocumentId    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Ordinal       int    `json:"ordinal"`
	Text          string `json:"content"`
	Level         Level  `json:"security_level"`
	Active        bool   `json:"active"`
	TokenCount    int    `json:"token_count"`
}

// Error taxonomy. Per-stage ingestion errors land on the document as FAILED
// with a message; query-path errors surface as a generic ERROR answer. Wrap
// with %w so callers can classify via errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrExtraction        = errors.New("text extraction failed")
	ErrEmbedding         = errors.New("embedding failed")
	ErrStorage           = errors.New("storage operation failed")
	ErrRetrievalTimeout  = errors.New("retrieval timed out")
	ErrGenerationTimeout = errors.New("generation timed out")
)

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	ListDocuments(ctx context.Context, ownerId string) ([]Document, error)
}
