package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
)

type failingAuditStore struct{}

func (f *failingAuditStore) AppendRecord(ctx context.Context, record chatModel.AuditRecord) error {
	return errors.New("redis down")
}

func (f *failingAuditStore) ListRecords(ctx context.Context, userId string) ([]chatModel.AuditRecord, error) {
	return nil, errors.New("redis down")
}

func TestRecord_SurvivesCancelledContext(t *testing.T) {
	primary := store.InitInMemoryAuditStore()
	l := NewLogger(primary, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l.Record(ctx, chatModel.AuditRecord{
		Message: chatModel.Message{Id: "m-1", Query: "q"},
		UserId:  "user-1",
	})

	recs, err := primary.ListRecords(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("record lost on cancelled context, got %d", len(recs))
	}
}

func TestRecord_FallsBackWhenPrimaryFails(t *testing.T) {
	fallback := store.InitInMemoryAuditStore()
	l := NewLogger(&failingAuditStore{}, fallback)

	l.Record(context.Background(), chatModel.AuditRecord{
		Message: chatModel.Message{Id: "m-1"},
		UserId:  "user-1",
	})

	recs, _ := fallback.ListRecords(context.Background(), "user-1")
	if len(recs) != 1 {
		t.Fatalf("record not written to fallback, got %d", len(recs))
	}
}
