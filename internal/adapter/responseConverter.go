package adapter

import (
	"fmt"

	"github.com/rchavali/ClearanceAPI/internal/api"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/jobModel"
)

func ToUploadResponse(documentId string, jobId string) api.UploadResponse {
	return api.UploadResponse{
		DocumentId: documentId,
		JobId:      jobId,
		StatusURL:  fmt.Sprintf("status/%s", jobId),
	}
}

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:          doc.Id,
		Title:       doc.Title,
		Level:       string(doc.Level),
		Status:      string(doc.Status),
		ContentType: string(doc.ContentType),
		ChunkCount:  doc.ChunkCount,
		Attempts:    doc.Attempts,
		ErrorDetail: doc.ErrorDetail,
		CreatedTime: doc.CreatedTime,
		UpdatedTime: doc.UpdatedTime,
	}
}

func toSourceResponses(refs []chatModel.SourceRef) []api.SourceResponse {
	if len(refs) == 0 {
		return nil
	}
	out := make([]api.SourceResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, api.SourceResponse{
			ChunkId:       r.ChunkId,
			DocumentId:    r.DocumentId,
			DocumentTitle: r.DocumentTitle,
			Ordinal:       r.Ordinal,
			Score:         r.Score,
		})
	}
	return out
}

func ToQueryResponse(msg chatModel.Message) api.QueryResponse {
	return api.QueryResponse{
		MessageId: msg.Id,
		SessionId: msg.SessionId,
		Answer:    msg.Answer,
		Source:    string(msg.Source),
		Sources:   toSourceResponses(msg.Sources),
		Model:     msg.Model,
		LatencyMS: msg.LatencyMS,
	}
}

func ToSessionResponse(session chatModel.ChatSession) api.SessionResponse {
	return api.SessionResponse{
		Id:          session.Id,
		Title:       session.Title,
		CreatedTime: session.CreatedTime,
		UpdatedTime: session.UpdatedTime,
	}
}

func ToMessageResponse(msg chatModel.Message) api.MessageResponse {
	return api.MessageResponse{
		Id:          msg.Id,
		Query:       msg.Query,
		Answer:      msg.Answer,
		Source:      string(msg.Source),
		Sources:     toSourceResponses(msg.Sources),
		CreatedTime: msg.CreatedTime,
	}
}

func ToAuditEntryResponse(record chatModel.AuditRecord) api.AuditEntryResponse {
	clearance := make([]string, 0, len(record.Clearance))
	for _, l := range record.Clearance {
		clearance = append(clearance, string(l))
	}
	return api.AuditEntryResponse{
		MessageId:    record.Id,
		SessionId:    record.SessionId,
		Query:        record.Query,
		Answer:       record.Answer,
		Source:       string(record.Source),
		Sources:      toSourceResponses(record.Sources),
		Model:        record.Model,
		Mode:         record.Mode,
		Role:         record.Role,
		Clearance:    clearance,
		LatencyMS:    record.LatencyMS,
		RecordedTime: record.RecordedTime,
	}
}

func ToJobResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:          job.Id,
		DocumentId:  job.DocumentId,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
		Error:       errorPtr,
	}
}
