package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/redis/go-redis/v9"
)

func TestRedisSessionStore_MessagesAppendOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	session := chatModel.ChatSession{
		Id:          "sess-1",
		OwnerId:     "user-1",
		Title:       "What is the leave policy",
		CreatedTime: time.Now(),
	}
	if err := sessionStore.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	m1 := chatModel.Message{Id: "m-1", SessionId: "sess-1", Query: "q1", Answer: "a1", Source: chatModel.SourceGenerated}
	m2 := chatModel.Message{Id: "m-2", SessionId: "sess-1", Query: "q2", Answer: "a2", Source: chatModel.SourceNoResults}
	if err := sessionStore.AppendMessage(ctx, "sess-1", m1); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := sessionStore.AppendMessage(ctx, "sess-1", m2); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	msgs, err := sessionStore.GetMessages(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("want 2 messages, got %d", len(msgs))
	}
	if msgs[0].Id != "m-1" || msgs[1].Id != "m-2" {
		t.Errorf("messages out of order: %+v", msgs)
	}
	if msgs[1].Source != chatModel.SourceNoResults {
		t.Errorf("source not preserved: %s", msgs[1].Source)
	}
}

func TestRedisSessionStore_SoftDeletePersists(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	session := chatModel.ChatSession{Id: "sess-2", OwnerId: "user-1"}
	if err := sessionStore.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	session.Deleted = true
	if err := sessionStore.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	// Soft-deleted sessions stay readable, hiding them is the manager's job.
	got, found := sessionStore.GetSession(ctx, "sess-2")
	if !found {
		t.Fatal("soft-deleted session should still be stored")
	}
	if !got.Deleted {
		t.Error("deleted flag not persisted")
	}
}

func TestRedisAuditStore_AppendAndList(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	auditStore := store.TestAuditStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	rec := chatModel.AuditRecord{
		Message: chatModel.Message{Id: "m-1", SessionId: "sess-1", Query: "q", Answer: "a", Source: chatModel.SourceGenerated},
		UserId:  "user-1",
		Role:    "EMPLOYEE",
		Mode:    "quick",
	}
	if err := auditStore.AppendRecord(ctx, rec); err != nil {
		t.Fatalf("AppendRecord failed: %v", err)
	}

	recs, err := auditStore.ListRecords(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}
	if recs[0].Role != "EMPLOYEE" || recs[0].Query != "q" {
		t.Errorf("record mismatch: %+v", recs[0])
	}

	other, err := auditStore.ListRecords(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("records leaked across users: %+v", other)
	}
}

func TestRedisSessionStore_RecentMessagesNewestFirst(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	for _, id := range []string{"m-1", "m-2", "m-3"} {
		msg := chatModel.Message{Id: id, SessionId: "sess-3", Query: "q " + id, Answer: "a " + id}
		if err := sessionStore.AppendMessage(ctx, "sess-3", msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	recent, err := sessionStore.GetRecentMessages(ctx, "sess-3", 2)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("want 2 messages, got %d", len(recent))
	}
	if recent[0].Id != "m-3" || recent[1].Id != "m-2" {
		t.Errorf("want newest first, got %s then %s", recent[0].Id, recent[1].Id)
	}

	all, err := sessionStore.GetRecentMessages(ctx, "sess-3", 10)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	if len(all) != 3 || all[0].Id != "m-3" {
		t.Errorf("short lists should come back whole, newest first: %+v", all)
	}
}

func TestRedisSessionStore_ListSortedByCreation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionStore := store.TestSessionStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	base := time.Now()
	// saved newest first so set order cannot accidentally match
	for i, id := range []string{"sess-c", "sess-b", "sess-a"} {
		session := chatModel.ChatSession{
			Id:          id,
			OwnerId:     "user-1",
			CreatedTime: base.Add(time.Duration(-i) * time.Hour),
		}
		if err := sessionStore.SaveSession(ctx, session); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}

	sessions, err := sessionStore.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("want 3 sessions, got %d", len(sessions))
	}
	if sessions[0].Id != "sess-a" || sessions[1].Id != "sess-b" || sessions[2].Id != "sess-c" {
		t.Errorf("sessions not ordered by creation time: %s, %s, %s", sessions[0].Id, sessions[1].Id, sessions[2].Id)
	}
}
