// internal/models/openai.go
package models

import (
	"context"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIModel struct {
	BaseModel
	modelName string
	client    *openai.Client
}

// NewOpenAI creates a chat-completions backed model. baseURL may point at any
// OpenAI compatible endpoint; empty keeps the library default.
func NewOpenAI(apiKey, modelName, baseURL string, retry RetryConfig) *OpenAIModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Transport: NewRetryableClient(retry)}

	return &OpenAIModel{
		BaseModel: NewBaseModel(ModelInfo{
			ID:       modelName,
			Name:     "OpenAI",
			Provider: "openai",
		}),
		modelName: modelName,
		client:    openai.NewClientWithConfig(cfg),
	}
}

func (m *OpenAIModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (text string, err error) {
	done := m.begin()
	defer func() { done(err) }()

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: openAITemperature(cfg.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// openAITemperature keeps an explicit zero on the wire; the request struct
// drops 0 via omitempty, which would fall back to the provider default.
func openAITemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
