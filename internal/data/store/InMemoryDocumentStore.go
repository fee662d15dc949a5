package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

type InMemoryDocumentStore struct {
	docMutex *sync.RWMutex
	docMap   map[string]docModel.Document
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]docModel.Document),
	}
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	store.docMutex.Lock()
	defer store.docMutex.Unlock()
	store.docMap[doc.Id] = doc
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()
	doc, found := store.docMap[id]
	return doc, found
}

func (store *InMemoryDocumentStore) ListDocuments(ctx context.Context, ownerId string) ([]docModel.Document, error) {
	store.docMutex.RLock()
	defer store.docMutex.RUnlock()

	var docs []docModel.Document
	for _, doc := range store.docMap {
		if doc.OwnerId == ownerId {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedTime.Before(docs[j].CreatedTime)
	})
	return docs, nil
}
