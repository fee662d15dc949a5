package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/access"
	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/metrics"
	"github.com/rchavali/ClearanceAPI/internal/rag/embedding"
	"github.com/rchavali/ClearanceAPI/internal/rag/llm"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

// Request is one query as the handler hands it over. Identity comes from the
// gateway headers, never from the request body.
type Request struct {
	UserId    string
	Role      access.Role
	SessionId string
	Query     string
	Mode      llm.Profile
}

// SessionRecorder persists the finished exchange into its session and serves
// the recent history back for the next prompt.
type SessionRecorder interface {
	RecordExchange(ctx context.Context, sessionId string, ownerId string, message chatModel.Message) error
	RecentHistory(ctx context.Context, sessionId string, ownerId string, n int) ([]string, error)
}

// AuditRecorder writes the compliance record. Implementations must not lose
// records when the request context is already cancelled.
type AuditRecorder interface {
	Record(ctx context.Context, record chatModel.AuditRecord)
}

// Service answers queries against the authorized slice of the index. Every
// request produces exactly one message and one audit record, refusals and
// errors included.
type Service interface {
	Answer(ctx context.Context, req Request) (chatModel.Message, error)
}

type service struct {
	embedder    embedding.Embedder
	index       vectorDB.VectorIndex
	llmProvider llm.Provider
	sessions    SessionRecorder
	audit       AuditRecorder
	logger      *logger_i.Logger
}

// NewService constructor. llmProvider may be nil, answers then fall back to
// extractive mode.
func NewService(em embedding.Embedder, index vectorDB.VectorIndex, llmProvider llm.Provider, sessions SessionRecorder, audit AuditRecorder) Service {
	return &service{
		embedder:    em,
		index:       index,
		llmProvider: llmProvider,
		sessions:    sessions,
		audit:       audit,
		logger:      logger_i.NewLogger("answer_service"),
	}
}

func (s *service) Answer(ctx context.Context, req Request) (chatModel.Message, error) {
	start := time.Now()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", req.SessionId)

	if !req.Mode.Valid() {
		req.Mode = llm.ProfileQuick
	}

	// Clearance resolution is fail-closed: an unknown role gets an empty
	// set and never reaches the index.
	allowed := access.Resolve(req.Role)
	if len(allowed) == 0 {
		log.Info("Refusing query, no clearance", "role", string(req.Role))
		return s.finish(ctx, req, allowed, s.refusal(req), start)
	}

	vector, err := s.executeEmbeddingStep(ctx, req.Query)
	if err != nil {
		log.Error("Embedding failed", "error", err)
		return s.finish(ctx, req, allowed, s.failure(req), start)
	}

	matches, err := s.executeSearchStep(ctx, vector, allowed)
	if err != nil {
		log.Error("Vector search failed", "error", err)
		return s.finish(ctx, req, allowed, s.failure(req), start)
	}

	// The refusal below is byte-identical whether nothing matched or the
	// matches sat above the caller's clearance.
	if len(matches) == 0 || matches[0].Score < config.SimilarityThreshold {
		return s.finish(ctx, req, allowed, s.refusal(req), start)
	}

	msg := s.executeAnswerStep(ctx, req, matches, log)
	return s.finish(ctx, req, allowed, msg, start)
}

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	stepCtx, cancel := context.WithTimeout(ctx, config.EmbeddingTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(stepCtx, query)
}

func (s *service) executeSearchStep(ctx context.Context, vector []float32, allowed []docModel.Level) ([]vectorDB.ChunkMatch, error) {
	stepCtx, cancel := context.WithTimeout(ctx, config.SearchTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	matches, err := s.index.Search(stepCtx, vector, allowed, config.TopK)
	if err != nil && retryable(stepCtx, err) {
		if sleepCtx(stepCtx, config.QueryRetryBackoff) == nil {
			matches, err = s.index.Search(stepCtx, vector, allowed, config.TopK)
		}
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", docModel.ErrRetrievalTimeout, err)
	}
	return matches, err
}

func (s *service) executeAnswerStep(ctx context.Context, req Request, matches []vectorDB.ChunkMatch, log *logger_i.Logger) chatModel.Message {
	msg := s.newMessage(req)
	msg.Sources = sourceRefs(matches)

	if config.GenerationDisabled || s.llmProvider == nil {
		msg.Source = chatModel.SourceExtractive
		msg.Answer = extractiveAnswer(matches)
		return msg
	}

	history, err := s.sessions.RecentHistory(ctx, req.SessionId, req.UserId, config.MessageHistoryLimit)
	if err != nil {
		log.Warn("Could not load session history", "error", err)
		history = nil
	}

	stepCtx, cancel := context.WithTimeout(ctx, config.GenerationTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	result, err := s.llmProvider.Generate(stepCtx, req.Mode, req.Query, contextTexts(matches), history)
	if err != nil && retryable(stepCtx, err) {
		if sleepCtx(stepCtx, config.QueryRetryBackoff) == nil {
			result, err = s.llmProvider.Generate(stepCtx, req.Mode, req.Query, contextTexts(matches), history)
		}
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Error("Generation timed out", "error", docModel.ErrGenerationTimeout)
		} else {
			log.Error("Generation failed", "error", err)
		}
		msg.Source = chatModel.SourceError
		msg.Answer = config.GenericErrorMessage
		msg.Sources = nil
		return msg
	}

	msg.Source = chatModel.SourceGenerated
	msg.Answer = result.Text
	msg.Model = result.Model
	msg.TokenCount = int(result.TokenCount)
	return msg
}

// finish is the single exit: it stamps latency, appends the message to its
// session and writes the audit record even when the caller is gone.
func (s *service) finish(ctx context.Context, req Request, allowed []docModel.Level, msg chatModel.Message, start time.Time) (chatModel.Message, error) {
	msg.LatencyMS = time.Since(start).Milliseconds()
	metrics.AnswerSourceTotal.WithLabelValues(string(msg.Source)).Inc()

	persistCtx := context.WithoutCancel(ctx)
	if err := s.sessions.RecordExchange(persistCtx, req.SessionId, req.UserId, msg); err != nil {
		s.logger.Error("Failed to append message to session", "error", err)
	}

	s.audit.Record(persistCtx, chatModel.AuditRecord{
		Message:      msg,
		UserId:       req.UserId,
		Role:         string(req.Role),
		Clearance:    allowed,
		Mode:         string(req.Mode),
		RecordedTime: time.Now(),
	})

	return msg, nil
}

func (s *service) newMessage(req Request) chatModel.Message {
	return chatModel.Message{
		Id:          utils.GetNewUUID(),
		SessionId:   req.SessionId,
		Query:       req.Query,
		CreatedTime: time.Now(),
	}
}

func (s *service) refusal(req Request) chatModel.Message {
	msg := s.newMessage(req)
	msg.Source = chatModel.SourceNoResults
	msg.Answer = config.RefusalMessage
	return msg
}

func (s *service) failure(req Request) chatModel.Message {
	msg := s.newMessage(req)
	msg.Source = chatModel.SourceError
	msg.Answer = config.GenericErrorMessage
	return msg
}

func sourceRefs(matches []vectorDB.ChunkMatch) []chatModel.SourceRef {
	refs := make([]chatModel.SourceRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, chatModel.SourceRef{
			ChunkId:       m.Chunk.ChunkId,
			DocumentId:    m.Chunk.DocumentId,
			DocumentTitle: m.Chunk.DocumentTitle,
			Ordinal:       m.Chunk.Ordinal,
			Score:         m.Score,
		})
	}
	return refs
}

// contextTexts caps the prompt context so a fat document cannot blow the
// model's context window.
func contextTexts(matches []vectorDB.ChunkMatch) []string {
	var texts []string
	total := 0
	for _, m := range matches {
		if total+len(m.Chunk.Text) > config.MaxContextChars && total > 0 {
			break
		}
		texts = append(texts, m.Chunk.Text)
		total += len(m.Chunk.Text)
	}
	return texts
}

func extractiveAnswer(matches []vectorDB.ChunkMatch) string {
	return strings.Join(contextTexts(matches), "\n\n")
}

// retryable limits the bounded retry to transient failures, a consumed
// deadline or a cancelled caller gains nothing from a second attempt.
func retryable(ctx context.Context, err error) bool {
	return ctx.Err() == nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
