package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/redis/go-redis/v9"
)

func newDocStore(t *testing.T) (*store.RedisDocumentStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestDocumentStore(redisStore.NewTestStore(client)), mr
}

func TestRedisDocumentStore_Lifecycle(t *testing.T) {
	docStore, _ := newDocStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	doc := docModel.Document{
		Id:      "doc-1",
		Title:   "Quarterly Revenue",
		Level:   docModel.LevelHigh,
		Active:  true,
		Status:  docModel.DocStatusPending,
		OwnerId: "user-1",
		BlobKey: "HIGH/2026/08/29/Quarterly_Revenue_x.pdf",
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := docStore.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		got, found := docStore.GetDocument(ctx, "doc-1")
		if !found {
			t.Fatal("Document was saved but not found in Redis")
		}
		if got.Level != docModel.LevelHigh || got.Title != doc.Title {
			t.Errorf("Data mismatch! Got %+v", got)
		}
	})

	t.Run("Status Update Overwrites", func(t *testing.T) {
		doc.Status = docModel.DocStatusIndexed
		doc.ChunkCount = 7
		if err := docStore.SaveDocument(ctx, doc); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		got, _ := docStore.GetDocument(ctx, "doc-1")
		if got.Status != docModel.DocStatusIndexed || got.ChunkCount != 7 {
			t.Errorf("Update not persisted, got %+v", got)
		}
	})

	t.Run("List By Owner", func(t *testing.T) {
		other := doc
		other.Id = "doc-2"
		other.OwnerId = "user-2"
		if err := docStore.SaveDocument(ctx, other); err != nil {
			t.Fatalf("SaveDocument failed: %v", err)
		}

		docs, err := docStore.ListDocuments(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(docs) != 1 || docs[0].Id != "doc-1" {
			t.Errorf("Owner listing wrong: %+v", docs)
		}
	})

	t.Run("Get Non-Existent Document", func(t *testing.T) {
		_, found := docStore.GetDocument(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})
}
