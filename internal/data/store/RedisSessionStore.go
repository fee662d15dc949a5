package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

const sessionKeyPrefix = "session:"
const ownerSessionsPrefix = "owner_sessions:"
const messagesKeyPrefix = "messages:"

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	return &RedisSessionStore{
		store:  redisStore.GetRedisStore(ctx, config.RedisSessionStore),
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func (s *RedisSessionStore) SaveSession(ctx context.Context, session chatModel.ChatSession) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", session.Id)
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, sessionKeyPrefix+session.Id, data, 0); err != nil {
		log.Error("Error saving session", "error", err)
		return err
	}
	if err = s.store.SetAdd(ctx, ownerSessionsPrefix+session.OwnerId, session.Id); err != nil {
		log.Error("Error indexing session by owner", "error", err)
		return err
	}
	log.Debug("Saved session to Redis")
	return nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (chatModel.ChatSession, bool) {
	var session chatModel.ChatSession
	val, err := s.store.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		return session, false
	}
	if err = json.Unmarshal([]byte(val), &session); err != nil {
		return session, false
	}
	return session, true
}

func (s *RedisSessionStore) ListSessions(ctx context.Context, ownerId string) ([]chatModel.ChatSession, error) {
	ids, err := s.store.SetMembers(ctx, ownerSessionsPrefix+ownerId)
	if err != nil {
		return nil, err
	}

	sessions := make([]chatModel.ChatSession, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.GetSession(ctx, id); ok {
			sessions = append(sessions, session)
		}
	}
	// set members come back in arbitrary order
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedTime.Before(sessions[j].CreatedTime)
	})
	return sessions, nil
}

// AppendMessage pushes to a per-session list. Messages are never rewritten,
// the list only grows.
func (s *RedisSessionStore) AppendMessage(ctx context.Context, sessionId string, message chatModel.Message) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, messagesKeyPrefix+sessionId, data); err != nil {
		log.Error("Error appending message", "error", err)
		return err
	}
	return nil
}

func (s *RedisSessionStore) GetMessages(ctx context.Context, sessionId string) ([]chatModel.Message, error) {
	vals, err := s.store.ListGetAll(ctx, messagesKeyPrefix+sessionId)
	if err != nil {
		return nil, err
	}

	messages := make([]chatModel.Message, 0, len(vals))
	for _, v := range vals {
		var m chatModel.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			s.logger.Error("Error unmarshalling message", "error", err)
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// GetRecentMessages reads the tail of the message list and flips it so the
// newest message comes first.
func (s *RedisSessionStore) GetRecentMessages(ctx context.Context, sessionId string, n int) ([]chatModel.Message, error) {
	vals, err := s.store.ListGetLastN(ctx, messagesKeyPrefix+sessionId, int64(n))
	if err != nil {
		return nil, err
	}
	vals = utils.ReverseStringArray(vals)

	messages := make([]chatModel.Message, 0, len(vals))
	for _, v := range vals {
		var m chatModel.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			s.logger.Error("Error unmarshalling message", "error", err)
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
