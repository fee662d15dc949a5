package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/rag/llm"
	"github.com/rchavali/ClearanceAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client *genai.Client
	models map[llm.Profile]string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

var ErrEmptyCompletion = errors.New("model returned an empty completion")

func GetGeminiClient(ctx context.Context, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, models: geminiClient.models}
}

func newGeminiClient(ctx context.Context, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{
			client: c,
			models: map[llm.Profile]string{
				llm.ProfileQuick:    config.QuickModelName,
				llm.ProfileDetailed: config.DetailedModelName,
			},
		}
		logger.Info("Gemini client created")
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Generate(ctx context.Context, profile llm.Profile, query string, contextChunks []string, messageHistory []string) (*llm.Result, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "profile", string(profile))

	modelName, ok := c.models[profile]
	if !ok {
		modelName = c.models[llm.ProfileQuick]
	}

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.ModelContext},
		},
	}

	var sb strings.Builder
	if len(messageHistory) > 0 {
		sb.WriteString("Conversation so far:\n")
		sb.WriteString(strings.Join(messageHistory, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(contextChunks, "\n---\n"))
	userPrompt := fmt.Sprintf("%s\n\nUser Question: %s", sb.String(), query)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       &temperature,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Error generating answer", "error", err.Error())
		return nil, err
	}

	text := result.Text()
	if text == "" {
		log.Error("Empty completion from model", "model", modelName)
		return nil, ErrEmptyCompletion
	}

	res := &llm.Result{Text: text, Model: modelName}
	if result.UsageMetadata != nil {
		res.TokenCount = result.UsageMetadata.TotalTokenCount
	}
	return res, nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.models = nil
}
