// internal/models/models_test.go
package models

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaibuddies/internal/config"
)

func testRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Timeout: 5 * time.Second}
}

func TestGeminiGenerate(t *testing.T) {
	var got geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("x-goog-api-key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Arre "},{"text":"namaste!"}]},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	m := NewGemini("key-123", "gemini-1.5-flash", server.URL, testRetry(1))
	text, err := m.Generate(context.Background(), "hello prompt", GenerationConfig{MaxOutputTokens: 100, Temperature: 0})
	require.NoError(t, err)

	assert.Equal(t, "Arre namaste!", text)
	assert.Equal(t, 100, got.GenerationConfig.MaxOutputTokens)
	assert.Equal(t, 0.0, got.GenerationConfig.Temperature)
	require.Len(t, got.Contents, 1)
	assert.Equal(t, "hello prompt", got.Contents[0].Parts[0].Text)
	assert.Equal(t, StatusIdle, m.Status())
}

func TestGeminiGenerate_ZeroTemperatureOnWire(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	defer server.Close()

	m := NewGemini("k", "gemini-1.5-flash", server.URL, testRetry(1))
	_, err := m.Generate(context.Background(), "p", GenerationConfig{MaxOutputTokens: 100, Temperature: 0})
	require.NoError(t, err)

	gen := raw["generationConfig"].(map[string]any)
	temp, ok := gen["temperature"]
	assert.True(t, ok, "temperature must be sent even when zero")
	assert.Equal(t, 0.0, temp)
}

func TestGeminiGenerate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{
			name:   "api error",
			status: http.StatusForbidden,
			body:   `{"error":{"message":"bad key"}}`,
			wantErr: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden
			},
		},
		{
			name:    "no candidates",
			status:  http.StatusOK,
			body:    `{"candidates":[]}`,
			wantErr: func(err error) bool { return errors.Is(err, ErrEmptyResponse) },
		},
		{
			name:    "blocked",
			status:  http.StatusOK,
			body:    `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantErr: func(err error) bool { return err != nil && !errors.Is(err, ErrEmptyResponse) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			m := NewGemini("k", "gemini-1.5-flash", server.URL, testRetry(1))
			_, err := m.Generate(context.Background(), "p", GenerationConfig{MaxOutputTokens: 100})
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
			assert.Equal(t, StatusError, m.Status())
		})
	}
}

func TestRetryableClient_SingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := NewGemini("k", "gemini-1.5-flash", server.URL, DefaultRetryConfig())
	_, err := m.Generate(context.Background(), "p", GenerationConfig{MaxOutputTokens: 100})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryableClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NotEmpty(t, body, "body must be replayed on retry")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"second time lucky"}]}}]}`)
	}))
	defer server.Close()

	m := NewGemini("k", "gemini-1.5-flash", server.URL, testRetry(3))
	text, err := m.Generate(context.Background(), "p", GenerationConfig{MaxOutputTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIGenerate(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &raw))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Hello ji!"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	m := NewOpenAI("sk-test", "gpt-4o-mini", server.URL, testRetry(1))
	text, err := m.Generate(context.Background(), "prompt", GenerationConfig{MaxOutputTokens: 100, Temperature: 0})
	require.NoError(t, err)

	assert.Equal(t, "Hello ji!", text)
	assert.Equal(t, "gpt-4o-mini", raw["model"])
	assert.EqualValues(t, 100, raw["max_tokens"])
	temp, ok := raw["temperature"].(float64)
	require.True(t, ok, "zero temperature must still be sent")
	assert.InDelta(t, 0, temp, 1e-6)
}

func TestOpenAIGenerate_RetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	var bodies []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, len(body))
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer server.Close()

	m := NewOpenAI("sk-test", "gpt-4o-mini", server.URL, testRetry(3))
	_, err := m.Generate(context.Background(), "prompt", GenerationConfig{MaxOutputTokens: 100, Temperature: 0.5})
	require.Error(t, err)

	assert.EqualValues(t, 3, hits.Load())
	require.Len(t, bodies, 3)
	for _, n := range bodies {
		assert.Equal(t, bodies[0], n, "request body must be replayed on every attempt")
		assert.Positive(t, n)
	}
}

func TestOpenAITemperature(t *testing.T) {
	assert.Greater(t, openAITemperature(0), float32(0))
	assert.Equal(t, float32(0.7), openAITemperature(0.7))
}

func TestEchoGenerate(t *testing.T) {
	m := NewEcho()
	prompt := "PERSONA IDENTITY:\nYou are Sandip Das, AWS Container Hero. Bio\n\nTASK:\nRespond to this message in a group chat to: \"hi\"\n"

	text, err := m.Generate(context.Background(), prompt, GenerationConfig{})
	require.NoError(t, err)
	assert.Contains(t, text, "Sandip Das")
	assert.Contains(t, text, "hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Generate(ctx, prompt, GenerationConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name     string
		provider config.ProviderConfig
		want     string
		wantErr  error
	}{
		{"echo", config.ProviderConfig{Name: config.ProviderEcho}, "echo", nil},
		{"gemini", config.ProviderConfig{Name: config.ProviderGemini, Model: "gemini-1.5-flash", APIKey: "k"}, "gemini", nil},
		{"gemini no key", config.ProviderConfig{Name: config.ProviderGemini}, "", ErrMissingAPIKey},
		{"openai", config.ProviderConfig{Name: config.ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "k"}, "openai", nil},
		{"openai local", config.ProviderConfig{Name: config.ProviderOpenAI, Model: "llama3", BaseURL: "http://localhost:11434/v1"}, "openai", nil},
		{"unknown", config.ProviderConfig{Name: "pigeon"}, "", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Provider: tt.provider}
			cfg.Provider.Timeout = 5
			cfg.Provider.RetryAttempts = 1

			m, err := NewFromConfig(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Info().Provider)
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "responding", StatusResponding.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "unknown", ModelStatus(42).String())
}
