package chatModel

import (
	"context"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

type AnswerSource string

const (
	SourceGenerated  AnswerSource = "GENERATED"
	SourceExtractive AnswerSource = "EXTRACTIVE"
	SourceNoResults  AnswerSource = "NO_RESULTS"
	SourceError      AnswerSource = "ERROR"
)

// SourceRef points at an authorized chunk that grounded an answer.
type SourceRef struct {
	ChunkId       string  `json:"chunk_id"`
	DocumentId    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Ordinal       int     `json:"ordinal"`
	Score         float32 `json:"similarity_score"`
}

// Message is a query/answer pair. Immutable once created - it is the audit unit.
type Message struct {
	Id          string       `json:"id"`
	SessionId   string       `json:"session_id"`
	Query       string       `json:"query"`
	Answer      string       `json:"answer"`
	Source      AnswerSource `json:"source"`
	Sources     []SourceRef  `json:"sources,omitempty"`
	Model       string       `json:"model,omitempty"`
	LatencyMS   int64        `json:"latency_ms"`
	TokenCount  int          `json:"token_count"`
	CreatedTime time.Time    `json:"created_time"`
}

// ChatSession is never hard-deleted. Soft delete hides it from listings while
// the audit trail stays intact.
type ChatSession struct {
	Id          string    `json:"id"`
	OwnerId     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Deleted     bool      `json:"deleted"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

// AuditRecord is the compliance record for one query: the message plus the
// clearance that was in force when it ran. Append-only, retained independently
// of session soft-deletion.
type AuditRecord struct {
	Message
	UserId       string           `json:"user_id"`
	Role         string           `json:"role"`
	Clearance    []docModel.Level `json:"clearance"`
	Mode         string           `json:"mode"`
	RecordedTime time.Time        `json:"recorded_time"`
}

type SessionStore interface {
	SaveSession(ctx context.Context, session ChatSession) error
	GetSession(ctx context.Context, id string) (ChatSession, bool)
	ListSessions(ctx context.Context, ownerId string) ([]ChatSession, error)
	AppendMessage(ctx context.Context, sessionId string, message Message) error
	GetMessages(ctx context.Context, sessionId string) ([]Message, error)
	// GetRecentMessages returns up to n of the latest messages, newest first.
	GetRecentMessages(ctx context.Context, sessionId string, n int) ([]Message, error)
}

// AuditStore is deliberately append-and-read-only: no update or delete exists.
type AuditStore interface {
	AppendRecord(ctx context.Context, record AuditRecord) error
	ListRecords(ctx context.Context, userId string) ([]AuditRecord, error)
}
