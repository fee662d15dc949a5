package audit

import (
	"context"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

// Logger writes audit records through the primary store with an in-memory
// fallback. A record that misses the primary still lands somewhere, losing
// the compliance trail is worse than double-writing it.
type Logger struct {
	primary  chatModel.AuditStore
	fallback chatModel.AuditStore
	logger   *logger_i.Logger
}

func NewLogger(primary chatModel.AuditStore, fallback chatModel.AuditStore) *Logger {
	return &Logger{
		primary:  primary,
		fallback: fallback,
		logger:   logger_i.NewLogger("audit"),
	}
}

// Record persists one record. It detaches from the caller's cancellation so
// an aborted request still leaves its trail, bounded by its own timeout.
func (l *Logger) Record(ctx context.Context, record chatModel.AuditRecord) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.AuditWriteTimeout)
	defer cancel()

	if err := l.primary.AppendRecord(writeCtx, record); err == nil {
		return
	} else {
		l.logger.Error("Primary audit write failed", "error", err, "userId", record.UserId)
	}

	if l.fallback == nil {
		return
	}
	if err := l.fallback.AppendRecord(writeCtx, record); err != nil {
		l.logger.Error("Fallback audit write failed", "error", err, "userId", record.UserId)
	}
}

func (l *Logger) ListRecords(ctx context.Context, userId string) ([]chatModel.AuditRecord, error) {
	return l.primary.ListRecords(ctx, userId)
}
