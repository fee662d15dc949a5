package api

import "time"

// Wire shapes for the HTTP surface. Domain types never leave the service,
// the adapter maps them here.

type QueryRequest struct {
	SessionId string `json:"session_id,omitempty"`
	Query     string `json:"query"`
	Mode      string `json:"mode,omitempty"` //quick or detailed
}

type SourceResponse struct {
	ChunkId       string  `json:"chunk_id"`
	DocumentId    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Ordinal       int     `json:"ordinal"`
	Score         float32 `json:"similarity_score"`
}

type QueryResponse struct {
	MessageId string           `json:"message_id"`
	SessionId string           `json:"session_id"`
	Answer    string           `json:"answer"`
	Source    string           `json:"source"`
	Sources   []SourceResponse `json:"sources,omitempty"`
	Model     string           `json:"model,omitempty"`
	LatencyMS int64            `json:"latency_ms"`
}

type UploadResponse struct {
	DocumentId string `json:"document_id"`
	JobId      string `json:"job_id"`
	StatusURL  string `json:"status_url"`
}

type DocumentResponse struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Status      string    `json:"status"`
	ContentType string    `json:"content_type,omitempty"`
	ChunkCount  int       `json:"chunk_count"`
	Attempts    int       `json:"attempts"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

type SessionResponse struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	CreatedTime time.Time `json:"created_time"`
	UpdatedTime time.Time `json:"updated_time"`
}

type MessageResponse struct {
	Id          string           `json:"id"`
	Query       string           `json:"query"`
	Answer      string           `json:"answer"`
	Source      string           `json:"source"`
	Sources     []SourceResponse `json:"sources,omitempty"`
	CreatedTime time.Time        `json:"created_time"`
}

type JobResponse struct {
	Id          string    `json:"id"`
	DocumentId  string    `json:"document_id"`
	Status      string    `json:"status"`
	CurrentStep string    `json:"current_step"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
	Error       *JobError `json:"error,omitempty"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type AuditEntryResponse struct {
	MessageId    string           `json:"message_id"`
	SessionId    string           `json:"session_id"`
	Query        string           `json:"query"`
	Answer       string           `json:"answer"`
	Source       string           `json:"source"`
	Sources      []SourceResponse `json:"sources,omitempty"`
	Model        string           `json:"model,omitempty"`
	Mode         string           `json:"mode"`
	Role         string           `json:"role"`
	Clearance    []string         `json:"clearance"`
	LatencyMS    int64            `json:"latency_ms"`
	RecordedTime time.Time        `json:"recorded_time"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
