package handlers

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/adapter"
	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/audit"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/blobStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/jobModel"
	"github.com/rchavali/ClearanceAPI/internal/job"
	"github.com/rchavali/ClearanceAPI/internal/metrics"
	"github.com/rchavali/ClearanceAPI/internal/rag/answer"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/internal/session"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

var (
	handlerInstance *serviceHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
	logRH           *logger_i.Logger
)

type serviceHandler struct {
	jobService *job.Service
	answerSvc  answer.Service
	documents  docModel.DocumentStore
	blobs      blobStore.Store
	sessions   *session.Manager
	audit      *audit.Logger
	index      vectorDB.VectorIndex
}

type HandlerConfig struct {
	JobService *job.Service
	AnswerSvc  answer.Service
	Documents  docModel.DocumentStore
	Blobs      blobStore.Store
	Sessions   *session.Manager
	Audit      *audit.Logger
	Index      vectorDB.VectorIndex
}

func InitHandlers(cfg HandlerConfig) {
	once.Do(func() {
		handlerInstance = &serviceHandler{
			jobService: cfg.JobService,
			answerSvc:  cfg.AnswerSvc,
			documents:  cfg.Documents,
			blobs:      cfg.Blobs,
			sessions:   cfg.Sessions,
			audit:      cfg.Audit,
			index:      cfg.Index,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting handlers")
	})
}

// enqueueIngestJob queues one ingestion run and returns the job id. The send
// blocks when the queue is full so upload pressure backs up to the client.
func enqueueIngestJob(documentId string, trace string) string {
	_job := jobModel.Job{
		Id:          utils.GetNewUUID(),
		DocumentId:  documentId,
		TraceId:     trace,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}

	logJH.Info("Queueing ingestion job", "jobId", _job.Id, "documentId", documentId)
	metrics.IncrementJobsInQueue()
	handlerInstance.jobService.JobChannel <- _job

	// ingestion hits external services, worth a worker of its own
	atomic.AddInt64(&handlerInstance.jobService.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	handlerInstance.jobService.DispatcherChannel <- true

	return _job.Id
}

func GetJobStatus(id string, trace string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, trace)
	if handlerInstance != nil {
		return handlerInstance.jobService.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetStatusHandler(w http.ResponseWriter, request *http.Request) {
	id := utils.GetChiURLParam(request, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "missing job id")
		return
	}

	jobResult, found := GetJobStatus(id, traceId(request.Context()))
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToJobResponse(jobResult))
}
