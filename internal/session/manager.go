package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

// Owner mismatch answers the same as a missing session so callers cannot
// probe for other users' session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager serializes writes per session. Appends from concurrent requests
// interleave but never corrupt the session record.
type Manager struct {
	store  chatModel.SessionStore
	mu     *sync.Mutex
	locks  map[string]*sync.Mutex
	logger *logger_i.Logger
}

func NewManager(store chatModel.SessionStore) *Manager {
	return &Manager{
		store:  store,
		mu:     &sync.Mutex{},
		locks:  make(map[string]*sync.Mutex),
		logger: logger_i.NewLogger("session_manager"),
	}
}

func (m *Manager) sessionLock(sessionId string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, exists := m.locks[sessionId]
	if !exists {
		lock = &sync.Mutex{}
		m.locks[sessionId] = lock
	}
	return lock
}

func (m *Manager) Create(ctx context.Context, ownerId string) (chatModel.ChatSession, error) {
	now := time.Now()
	session := chatModel.ChatSession{
		Id:          utils.GetNewUUID(),
		OwnerId:     ownerId,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := m.store.SaveSession(ctx, session); err != nil {
		return chatModel.ChatSession{}, err
	}
	return session, nil
}

func (m *Manager) Get(ctx context.Context, sessionId string, ownerId string) (chatModel.ChatSession, []chatModel.Message, error) {
	session, ok := m.store.GetSession(ctx, sessionId)
	if !ok || session.OwnerId != ownerId || session.Deleted {
		return chatModel.ChatSession{}, nil, ErrSessionNotFound
	}

	messages, err := m.store.GetMessages(ctx, sessionId)
	if err != nil {
		return chatModel.ChatSession{}, nil, err
	}
	return session, messages, nil
}

func (m *Manager) List(ctx context.Context, ownerId string) ([]chatModel.ChatSession, error) {
	all, err := m.store.ListSessions(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	sessions := make([]chatModel.ChatSession, 0, len(all))
	for _, s := range all {
		if !s.Deleted {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// Delete is a soft delete and idempotent. The session and its messages stay
// stored for the audit trail.
func (m *Manager) Delete(ctx context.Context, sessionId string, ownerId string) error {
	lock := m.sessionLock(sessionId)
	lock.Lock()
	defer lock.Unlock()

	session, ok := m.store.GetSession(ctx, sessionId)
	if !ok || session.OwnerId != ownerId {
		return ErrSessionNotFound
	}
	if session.Deleted {
		return nil
	}

	session.Deleted = true
	session.UpdatedTime = time.Now()
	return m.store.SaveSession(ctx, session)
}

// RecordExchange appends a finished query/answer pair. An unknown session id
// is created on the fly so the answer path never loses a message.
func (m *Manager) RecordExchange(ctx context.Context, sessionId string, ownerId string, message chatModel.Message) error {
	lock := m.sessionLock(sessionId)
	lock.Lock()
	defer lock.Unlock()

	session, ok := m.store.GetSession(ctx, sessionId)
	if !ok {
		session = chatModel.ChatSession{
			Id:          sessionId,
			OwnerId:     ownerId,
			CreatedTime: time.Now(),
		}
	}
	if session.OwnerId != ownerId {
		m.logger.Error("Rejecting exchange for foreign session", "sessionId", sessionId)
		return ErrSessionNotFound
	}

	if session.Title == "" {
		session.Title = deriveTitle(message.Query)
	}
	session.UpdatedTime = time.Now()

	if err := m.store.SaveSession(ctx, session); err != nil {
		return err
	}
	return m.store.AppendMessage(ctx, sessionId, message)
}

// RecentHistory renders the last few exchanges of a session as prompt lines,
// oldest first. Best effort for the answer path, an unknown session just has
// no history yet.
func (m *Manager) RecentHistory(ctx context.Context, sessionId string, ownerId string, n int) ([]string, error) {
	session, ok := m.store.GetSession(ctx, sessionId)
	if !ok {
		return nil, nil
	}
	if session.OwnerId != ownerId {
		return nil, ErrSessionNotFound
	}

	messages, err := m.store.GetRecentMessages(ctx, sessionId, n)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, 2*len(messages))
	for i := len(messages) - 1; i >= 0; i-- { //store hands them newest first
		lines = append(lines, "User: "+messages[i].Query, "Assistant: "+messages[i].Answer)
	}
	return lines, nil
}

// deriveTitle truncates on a rune boundary so a multi-byte query never leaves
// an invalid tail in the stored title.
func deriveTitle(query string) string {
	runes := []rune(query)
	if len(runes) <= config.SessionTitleMaxChars {
		return query
	}
	return string(runes[:config.SessionTitleMaxChars])
}
