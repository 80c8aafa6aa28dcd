// internal/models/gemini.go
package models

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiModel struct {
	BaseModel
	apiKey    string
	modelName string
	baseURL   string
	client    *RetryableClient
}

func NewGemini(apiKey, modelName, baseURL string, retry RetryConfig) *GeminiModel {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiModel{
		BaseModel: NewBaseModel(ModelInfo{
			ID:       modelName,
			Name:     "Gemini",
			Provider: "gemini",
		}),
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    NewRetryableClient(retry),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (text string, err error) {
	done := m.begin()
	defer func() { done(err) }()

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: cfg.MaxOutputTokens,
			Temperature:     cfg.Temperature,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", m.baseURL, url.PathEscape(m.modelName))
	headers := map[string]string{"x-goog-api-key": m.apiKey}

	var resp geminiResponse
	if err := m.client.PostJSON(ctx, "gemini", endpoint, headers, reqBody, &resp); err != nil {
		return "", err
	}

	if resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
