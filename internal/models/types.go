// internal/models/types.go
package models

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxOutputTokens caps every persona reply
const DefaultMaxOutputTokens = 100

var (
	ErrEmptyResponse   = errors.New("provider returned no text")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("missing provider api key")
)

// GenerationConfig holds per-call generation parameters
type GenerationConfig struct {
	MaxOutputTokens int
	Temperature     float64
}

// APIError is a non-success HTTP answer from a provider
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ModelStatus represents the current state of a model
type ModelStatus int

const (
	StatusIdle ModelStatus = iota
	StatusResponding
	StatusError
	StatusTimeout
)

func (s ModelStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusResponding:
		return "responding"
	case StatusError:
		return "error"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ModelInfo contains display information for a model
type ModelInfo struct {
	ID       string // gemini-1.5-flash, gpt-4o-mini, echo
	Name     string // Display name
	Provider string // gemini, openai, echo
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
