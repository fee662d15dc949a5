package store

import (
	"context"
	"encoding/json"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

const auditKeyPrefix = "audit:"

// RedisAuditStore only ever pushes to per-user lists. There is no delete
// path, records outlive the sessions they came from.
type RedisAuditStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisAuditStore(ctx context.Context) *RedisAuditStore {
	return &RedisAuditStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisAuditStore),
		logger: logger_i.NewLogger("AuditStore"),
	}
}

func (s *RedisAuditStore) AppendRecord(ctx context.Context, record chatModel.AuditRecord) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "userId", record.UserId)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, auditKeyPrefix+record.UserId, data); err != nil {
		log.Error("Error appending audit record", "error", err)
		return err
	}
	log.Debug("Appended audit record")
	return nil
}

func (s *RedisAuditStore) ListRecords(ctx context.Context, userId string) ([]chatModel.AuditRecord, error) {
	vals, err := s.store.ListGetAll(ctx, auditKeyPrefix+userId)
	if err != nil {
		return nil, err
	}

	records := make([]chatModel.AuditRecord, 0, len(vals))
	for _, v := range vals {
		var r chatModel.AuditRecord
		if err := json.Unmarshal([]byte(v), &r); err != nil {
			s.logger.Error("Error unmarshalling audit record", "error", err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func TestAuditStore(store *redisStore.Store) *RedisAuditStore {
	return &RedisAuditStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
