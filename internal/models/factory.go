// internal/models/factory.go
package models

import (
	"fmt"
	"time"

	"chaibuddies/internal/config"
)

// NewFromConfig builds the configured completion backend
func NewFromConfig(cfg *config.Config) (Model, error) {
	p := cfg.Provider
	retry := RetryConfig{
		MaxAttempts: p.RetryAttempts,
		BaseDelay:   time.Duration(p.RetryDelay) * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Timeout:     cfg.ProviderTimeout(),
	}

	switch p.Name {
	case config.ProviderGemini:
		if p.APIKey == "" {
			return nil, fmt.Errorf("%w: set provider.api_key or GEMINI_API_KEY", ErrMissingAPIKey)
		}
		return NewGemini(p.APIKey, p.Model, p.BaseURL, retry), nil

	case config.ProviderOpenAI:
		if p.APIKey == "" && p.BaseURL == "" {
			return nil, fmt.Errorf("%w: set provider.api_key or OPENAI_API_KEY", ErrMissingAPIKey)
		}
		return NewOpenAI(p.APIKey, p.Model, p.BaseURL, retry), nil

	case config.ProviderEcho:
		return NewEcho(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p.Name)
	}
}
