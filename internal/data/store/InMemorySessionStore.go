package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
)

type InMemorySessionStore struct {
	mutex    *sync.RWMutex
	sessions map[string]chatModel.ChatSession
	messages map[string][]chatModel.Message
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		mutex:    new(sync.RWMutex),
		sessions: make(map[string]chatModel.ChatSession),
		messages: make(map[string][]chatModel.Message),
	}
}

func (store *InMemorySessionStore) SaveSession(ctx context.Context, session chatModel.ChatSession) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sessions[session.Id] = session
	return nil
}

func (store *InMemorySessionStore) GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	session, found := store.sessions[id]
	return session, found
}

func (store *InMemorySessionStore) ListSessions(ctx context.Context, ownerId string) ([]chatModel.ChatSession, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	var sessions []chatModel.ChatSession
	for _, session := range store.sessions {
		if session.OwnerId == ownerId {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedTime.Before(sessions[j].CreatedTime)
	})
	return sessions, nil
}

func (store *InMemorySessionStore) AppendMessage(ctx context.Context, sessionId string, message chatModel.Message) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.messages[sessionId] = append(store.messages[sessionId], message)
	return nil
}

func (store *InMemorySessionStore) GetMessages(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	msgs := store.messages[sessionId]
	out := make([]chatModel.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (store *InMemorySessionStore) GetRecentMessages(ctx context.Context, sessionId string, n int) ([]chatModel.Message, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	msgs := store.messages[sessionId]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]chatModel.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- { //newest first
		out = append(out, msgs[i])
	}
	return out, nil
}
