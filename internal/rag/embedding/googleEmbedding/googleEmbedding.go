package googleEmbedding

import (
	"context"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/rag/embedding"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Debug("Google Embedding model name: " + modelName)
		logger.Info("Google Embedding client created")
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := c.doCall(ctx, genai.Text(query), "RETRIEVAL_QUERY")
	if err != nil {
		if doRetry(err, log) {
			log.Debug("Retrying after backoff")
			if err = sleepCtx(ctx, config.EmbeddingRetryBackoff); err != nil {
				return nil, err
			}
			result, err = c.doCall(ctx, genai.Text(query), "RETRIEVAL_QUERY")
		}
		if err != nil {
			log.Error("Error getting query embedding from Google", "error", err.Error())
			return nil, err
		}
	}
	return firstVector(result)
}

// BatchEmbedding embeds chunk texts in groups of config.EmbeddingBatchSize.
// Results keep the input order so callers can pair vectors with chunks.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "texts", len(texts))

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += config.EmbeddingBatchSize {
		end := min(start+config.EmbeddingBatchSize, len(texts))
		batch, err := c.embedBatch(ctx, texts[start:end], log)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *client) embedBatch(ctx context.Context, texts []string, log *logger_i.Logger) ([][]float32, error) {
	res, err := c.doCall(ctx, getContent(texts), "RETRIEVAL_DOCUMENT")
	if err != nil || res == nil {
		if doRetry(err, log) {
			log.Debug("Retrying after backoff")
			if err = sleepCtx(ctx, config.EmbeddingRetryBackoff); err != nil {
				return nil, err
			}
			res, err = c.doCall(ctx, getContent(texts), "RETRIEVAL_DOCUMENT")
		}
		if err != nil || res == nil {
			log.Error("Error getting batch embeddings from Google", "error", err)
			return nil, err
		}
	}

	if len(res.Embeddings) != len(texts) {
		log.Error("Embedding count mismatch", "want", len(texts), "got", len(res.Embeddings))
		return nil, errNoEmbeddings
	}

	results := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		results = append(results, r.Values)
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskType})
}
