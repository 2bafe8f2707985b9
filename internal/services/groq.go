package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// GroqService talks to Groq-hosted chat models over the OpenAI-compatible API.
type GroqService interface {
	GenerateText(ctx context.Context, model, prompt string, temperature float64) (string, error)
}

type groqService struct {
	client    openai.Client
	maxTokens int64
}

func NewGroqService(apiKey, baseURL string) GroqService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(120 * time.Second),
		// retries are owned by the BackoffController
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &groqService{
		client:    openai.NewClient(opts...),
		maxTokens: 2000,
	}
}

func (g *groqService) GenerateText(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(g.maxTokens),
		Temperature: openai.Float(temperature),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("groq chat: %w", err)
	}

	slog.DebugContext(ctx, "groq chat completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
