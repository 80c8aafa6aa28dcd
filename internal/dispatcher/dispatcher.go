// internal/dispatcher/dispatcher.go
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chaibuddies/internal/models"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/prompt"
)

var (
	ErrNoPersonas       = errors.New("no personas selected")
	ErrTemperatureRange = errors.New("temperature must be between 0 and 1")
)

// PersonaError reports which persona's completion call aborted a dispatch
type PersonaError struct {
	PersonaID string
	Err       error
}

func (e *PersonaError) Error() string {
	return fmt.Sprintf("persona %s: %v", e.PersonaID, e.Err)
}

func (e *PersonaError) Unwrap() error {
	return e.Err
}

// Settings are the user-adjustable generation settings
type Settings struct {
	Temperature float64
	Tone        prompt.Tone
}

// DefaultSettings matches the chat defaults
func DefaultSettings() Settings {
	return Settings{Temperature: 0.7, Tone: prompt.ToneDefault}
}

func (s Settings) Validate() error {
	if s.Temperature < 0 || s.Temperature > 1 {
		return fmt.Errorf("%w: %v", ErrTemperatureRange, s.Temperature)
	}
	return nil
}

// Dispatcher turns one user message into persona replies
type Dispatcher struct {
	model     models.Model
	registry  *personas.Registry
	recorder  Recorder
	maxTokens int
	timeout   time.Duration
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

func WithMaxOutputTokens(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxTokens = n
		}
	}
}

// WithTimeout bounds each completion call. Zero leaves calls bounded only
// by the caller's context.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = t
	}
}

func New(model models.Model, registry *personas.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		model:     model,
		registry:  registry,
		recorder:  NopRecorder{},
		maxTokens: models.DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch produces a Single result for one active persona and a Group
// result keyed by persona ID otherwise. Group calls run one after another
// in the order given. The first failed call aborts the whole batch.
func (d *Dispatcher) Dispatch(ctx context.Context, message string, active []personas.Persona, s Settings) (Result, error) {
	if len(active) == 0 {
		return Result{}, ErrNoPersonas
	}
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	if len(active) == 1 {
		p := active[0]
		text, err := d.call(ctx, p, d.registry.Others(p.ID), message, false, s)
		if err != nil {
			return Result{}, err
		}
		return Single(text), nil
	}

	replies := make(map[string]string, len(active))
	for i, p := range active {
		others := make([]personas.Persona, 0, len(active)-1)
		others = append(others, active[:i]...)
		others = append(others, active[i+1:]...)

		text, err := d.call(ctx, p, others, message, true, s)
		if err != nil {
			return Result{}, err
		}
		replies[p.ID] = text
	}
	return Group(replies), nil
}

func (d *Dispatcher) call(ctx context.Context, p personas.Persona, others []personas.Persona, message string, group bool, s Settings) (string, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	text := prompt.Build(p, others, s.Tone, message, group)
	start := time.Now()
	reply, err := d.model.Generate(ctx, text, models.GenerationConfig{
		MaxOutputTokens: d.maxTokens,
		Temperature:     s.Temperature,
	})

	d.recorder.Record(context.WithoutCancel(ctx), Call{
		PersonaID:   p.ID,
		Group:       group,
		Temperature: s.Temperature,
		Tone:        s.Tone,
		PromptChars: len(text),
		ReplyChars:  len(reply),
		Latency:     time.Since(start),
		Err:         err,
	})

	if err != nil {
		return "", &PersonaError{PersonaID: p.ID, Err: err}
	}
	return reply, nil
}
