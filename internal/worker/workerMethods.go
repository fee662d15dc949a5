package worker

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/config"
	jobmodel "github.com/rchavali/ClearanceAPI/internal/domain/jobModel"
	"github.com/rchavali/ClearanceAPI/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, 10*time.Minute)
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id, "documentId", job.DocumentId)
	log.Debug("Processing ingestion job")

	job.CurrentStep = jobmodel.IngestProcessing
	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	if err := _ingestRunner.Run(ctx, job.DocumentId); err != nil {
		log.Error("Ingestion job failed", "error", err)
		job.CurrentStep = jobmodel.Error
		job.Error = jobmodel.JobError{
			Code:    http.StatusInternalServerError,
			Message: "Document ingestion failed",
			Retry:   true,
		}
		job.EndTime = time.Now()
		saveJobState(ctx, job, jobmodel.JobStatusError)
		return
	}

	job.CurrentStep = jobmodel.Complete
	job.EndTime = time.Now()
	saveJobState(ctx, job, jobmodel.JobStatusComplete)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
