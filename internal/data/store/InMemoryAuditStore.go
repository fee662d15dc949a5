package store

import (
	"context"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
)

type InMemoryAuditStore struct {
	mutex   *sync.RWMutex
	records map[string][]chatModel.AuditRecord
}

func InitInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{
		mutex:   new(sync.RWMutex),
		records: make(map[string][]chatModel.AuditRecord),
	}
}

func (store *InMemoryAuditStore) AppendRecord(ctx context.Context, record chatModel.AuditRecord) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.records[record.UserId] = append(store.records[record.UserId], record)
	return nil
}

func (store *InMemoryAuditStore) ListRecords(ctx context.Context, userId string) ([]chatModel.AuditRecord, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	recs := store.records[userId]
	out := make([]chatModel.AuditRecord, len(recs))
	copy(out, recs)
	return out, nil
}
