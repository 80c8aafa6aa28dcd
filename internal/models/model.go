// internal/models/model.go
package models

import (
	"context"
	"sync"
)

// Model is the interface all completion backends must implement
type Model interface {
	// Info returns display information about the model
	Info() ModelInfo

	// Generate sends a single prompt and returns the full generated text.
	// Exactly one provider call is made per invocation.
	Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error)

	// Status returns the current status of the model
	Status() ModelStatus

	// SetStatus updates the model status
	SetStatus(status ModelStatus)
}

// BaseModel provides common functionality for all models
type BaseModel struct {
	info  ModelInfo
	state *modelState
}

type modelState struct {
	mu       sync.Mutex
	status   ModelStatus
	inFlight int
}

func NewBaseModel(info ModelInfo) BaseModel {
	return BaseModel{
		info:  info,
		state: &modelState{status: StatusIdle},
	}
}

func (m *BaseModel) Info() ModelInfo {
	return m.info
}

func (m *BaseModel) Status() ModelStatus {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return m.state.status
}

func (m *BaseModel) SetStatus(status ModelStatus) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.status = status
}

// begin marks a call in flight; the returned func records the outcome.
// Several sessions may share one model, so status only returns to idle
// once the last concurrent call finishes.
func (m *BaseModel) begin() func(err error) {
	st := m.state
	st.mu.Lock()
	st.inFlight++
	st.status = StatusResponding
	st.mu.Unlock()

	return func(err error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		st.inFlight--
		switch {
		case err != nil && isTimeout(err):
			st.status = StatusTimeout
		case err != nil:
			st.status = StatusError
		case st.inFlight == 0:
			st.status = StatusIdle
		}
	}
}
