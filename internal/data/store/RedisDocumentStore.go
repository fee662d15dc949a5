package store

import (
	"context"
	"encoding/json"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

const docKeyPrefix = "doc:"
const ownerDocsPrefix = "owner_docs:"

type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisDocumentStore),
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", doc.Id)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	// documents are durable metadata, no TTL
	if err = s.store.Set(ctx, docKeyPrefix+doc.Id, data, 0); err != nil {
		log.Error("Error saving document", "error", err)
		return err
	}
	if err = s.store.SetAdd(ctx, ownerDocsPrefix+doc.OwnerId, doc.Id); err != nil {
		log.Error("Error indexing document by owner", "error", err)
		return err
	}
	log.Debug("Saved document to Redis")
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	var doc docModel.Document
	val, err := s.store.Get(ctx, docKeyPrefix+id)
	if err != nil {
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context, ownerId string) ([]docModel.Document, error) {
	ids, err := s.store.SetMembers(ctx, ownerDocsPrefix+ownerId)
	if err != nil {
		return nil, err
	}

	docs := make([]docModel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := s.GetDocument(ctx, id); ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
