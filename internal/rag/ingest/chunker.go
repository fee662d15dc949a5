package ingest

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

// Point ids are derived from document id and chunk ordinal so that
// re-ingesting a document overwrites its chunks in place instead of
// accumulating duplicates.
var chunkIdNamespace = uuid.MustParse("7f1c9b3e-42da-4c55-9f4e-8d2a6b1e0c37")

func ChunkPointID(documentId string, ordinal int) string {
	return uuid.NewSHA1(chunkIdNamespace, []byte(fmt.Sprintf("%s:%d", documentId, ordinal))).String()
}

// CleanText collapses all whitespace runs to single spaces. Identical input
// bytes always normalize to the same text, which keeps the whole split
// deterministic.
func CleanText(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// splitTextIntoChunks cuts the cleaned text into fixed-stride windows of
// size characters with overlap characters shared between neighbours.
func splitTextIntoChunks(text string, size int, overlap int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	stride := size - overlap
	if stride < 1 {
		stride = size
	}

	var chunks []string
	for start := 0; start < len(text); start += stride {
		end := min(start+size, len(text))
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

func PrepareChunks(text string, doc docModel.Document) []docModel.DocChunk {
	cleaned := CleanText(text)
	stringChunks := splitTextIntoChunks(cleaned, config.ChunkSize, config.ChunkOverlap)

	allChunks := make([]docModel.DocChunk, 0, len(stringChunks))
	for i, chunkText := range stringChunks {
		allChunks = append(allChunks, docModel.DocChunk{
			ChunkId:       ChunkPointID(doc.Id, i),
			DocumentId:    doc.Id,
			DocumentTitle: doc.Title,
			Ordinal:       i,
			Text:          chunkText,
			Level:         doc.Level,
			Active:        doc.Active,
			TokenCount:    len(strings.Fields(chunkText)),
		})
	}
	return allChunks
}
