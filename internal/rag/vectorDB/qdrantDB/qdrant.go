package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

// CollectionName embeds the embedding model slug and dimensionality. A model
// upgrade therefore lands in a fresh, empty collection instead of silently
// mixing embedding spaces; re-indexing is explicit.
func CollectionName() string {
	slug := strings.ReplaceAll(config.GoogleEmbeddingModel, "/", "-")
	return fmt.Sprintf("%s-%s-%d", config.ChunkCollectionBaseName, slug, dimension)
}

func GetQuadrantClient(ctx context.Context) vectorDB.VectorIndex {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: quadrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	err = createCollection(ctx, client, CollectionName())
	if err != nil {
		logger.Error("could not create collection: ", "collectionName", CollectionName(), "error:", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

// Search pushes the clearance predicate into the qdrant query filter: only
// points whose security_level is in allowedLevels and whose active flag is
// true are ranked and returned. Unauthorized chunks never leave the store.
func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, allowedLevels []docModel.Level, k int) ([]vectorDB.ChunkMatch, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if len(allowedLevels) == 0 {
		// Empty clearance can never match anything; skip the round trip.
		return nil, nil
	}

	levelKeywords := make([]string, 0, len(allowedLevels))
	for _, l := range allowedLevels {
		levelKeywords = append(levelKeywords, string(l))
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName(),
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatchKeywords("security_level", levelKeywords...),
				qdrant.NewMatchBool("active", true),
			},
		},
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	matches := make([]vectorDB.ChunkMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.ChunkMatch{
			Score: hit.Score,
			Chunk: docModel.DocChunk{
				ChunkId:       hit.Payload["chunk_id"].GetStringValue(),
				DocumentId:    hit.Payload["document_id"].GetStringValue(),
				DocumentTitle: hit.Payload["document_title"].GetStringValue(),
				Ordinal:       int(hit.Payload["ordinal"].GetIntegerValue()),
				Text:          hit.Payload["content"].GetStringValue(),
				Level:         docModel.Level(hit.Payload["security_level"].GetStringValue()),
				Active:        hit.Payload["active"].GetBoolValue(),
				TokenCount:    int(hit.Payload["token_count"].GetIntegerValue()),
			},
		})
	}

	// Stable ordering for equal scores: chunk id ascending.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.ChunkId < matches[j].Chunk.ChunkId
	})

	loggr.Debug("Search complete", "matches", len(matches))
	return matches, nil
}

// ReplaceDocumentChunks relies on deterministic point ids (UUIDv5 of document
// id and ordinal): the whole new chunk set lands in a single batch upsert that
// overwrites the previous generation in place. Stale tail points of a document
// that shrank are removed afterwards by ordinal range.
func (db *ClientHolder) ReplaceDocumentChunks(ctx context.Context, documentId string, chunks []docModel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":       chunk.ChunkId,
				"document_id":    chunk.DocumentId,
				"document_title": chunk.DocumentTitle,
				"ordinal":        chunk.Ordinal,
				"content":        chunk.Text,
				"security_level": string(chunk.Level),
				"active":         chunk.Active,
				"token_count":    chunk.TokenCount,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionName(),
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return db.deleteTail(ctx, documentId, len(chunks))
}

func (db *ClientHolder) deleteTail(ctx context.Context, documentId string, fromOrdinal int) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName(),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
				qdrant.NewRange("ordinal", &qdrant.Range{Gte: qdrant.PtrOf(float64(fromOrdinal))}),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant tail delete failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) PurgeDocument(ctx context.Context, documentId string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CollectionName(),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Purge failed", "documentId", documentId, "error", err)
		return fmt.Errorf("qdrant purge failed: %w", err)
	}
	loggr.Debug("Purged document chunks", "documentId", documentId)
	return nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	return createCollection(ctx, db.QObj, CollectionName())
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
