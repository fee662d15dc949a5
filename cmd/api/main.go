package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rchavali/ClearanceAPI/internal/audit"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/blobStore"
	"github.com/rchavali/ClearanceAPI/internal/data/redisStore"
	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/domain/chatModel"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
	jobmodel "github.com/rchavali/ClearanceAPI/internal/domain/jobModel"
	"github.com/rchavali/ClearanceAPI/internal/handlers"
	"github.com/rchavali/ClearanceAPI/internal/job"
	"github.com/rchavali/ClearanceAPI/internal/rag/answer"
	"github.com/rchavali/ClearanceAPI/internal/rag/embedding/googleEmbedding"
	"github.com/rchavali/ClearanceAPI/internal/rag/ingest"
	"github.com/rchavali/ClearanceAPI/internal/rag/llm/gemini"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB/memoryDB"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/rchavali/ClearanceAPI/internal/server"
	"github.com/rchavali/ClearanceAPI/internal/session"
	"github.com/rchavali/ClearanceAPI/internal/worker"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//stores - each falls back to its in-memory twin when Redis is offline
	var jobStore jobmodel.JobStore = store.GetRedisJobStore(serviceContext)
	var documentStore docModel.DocumentStore = store.GetRedisDocumentStore(serviceContext)
	var sessionStore chatModel.SessionStore = store.GetRedisSessionStore(serviceContext)
	var auditStore chatModel.AuditStore = store.GetRedisAuditStore(serviceContext)
	var blobs blobStore.Store

	if redisStore.GetRedisStore(serviceContext, config.RedisJobStore) == nil {
		logger.Error("Redis is offline, using in-memory stores")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		jobStore = store.InitInMemoryJobStore()
		documentStore = store.InitInMemoryDocumentStore()
		sessionStore = store.InitInMemorySessionStore()
		auditStore = store.InitInMemoryAuditStore()

		diskBlobs, err := blobStore.NewDiskBlobStore("blob_data")
		if err != nil {
			logger.Error("Could not init disk blob store", "error", err)
			return
		}
		blobs = diskBlobs
	} else {
		blobs = blobStore.NewRedisBlobStore(redisStore.GetRedisStore(serviceContext, config.RedisBlobStore))
	}

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	var index vectorDB.VectorIndex = qdrantDB.GetQuadrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GoogleAPIKey)

	// the embedder is the one dependency nothing can stand in for
	if embeddingService == nil {
		logger.Error("Embedding service failed to initialize. Shutting down.")
		return
	}
	if index == nil {
		logger.Error("Qdrant is offline, using in-memory vector index")
		index = memoryDB.NewMemoryIndex()
	}
	if llmProvider == nil {
		logger.Error("LLM provider unavailable, answers fall back to extractive mode")
	}

	sessionManager := session.NewManager(sessionStore)
	auditLogger := audit.NewLogger(auditStore, store.InitInMemoryAuditStore())
	answerService := answer.NewService(embeddingService, index, llmProvider, sessionManager, auditLogger)
	ingestRunner := ingest.NewPipeline(blobs, documentStore, embeddingService, index)

	handlers.InitHandlers(handlers.HandlerConfig{
		JobService: service,
		AnswerSvc:  answerService,
		Documents:  documentStore,
		Blobs:      blobs,
		Sessions:   sessionManager,
		Audit:      auditLogger,
		Index:      index,
	})

	//init worker pool
	worker.InitServices(service, ingestRunner)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
