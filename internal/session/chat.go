// internal/session/chat.go
package session

import (
	"context"
	"strings"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/prompt"
	"chaibuddies/internal/scheduler"
)

// Start leaves selection and asks the active personas to greet the user.
// It blocks until the dispatch completes; greeting replies then arrive
// on the presentation schedule.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Selecting {
		s.mu.Unlock()
		return ErrInvalidState
	}
	active := s.activeLocked()
	if len(active) == 0 {
		s.mu.Unlock()
		return ErrNoPersonas
	}
	run := s.beginLocked(ctx, Greeting)
	settings := s.settings
	s.mu.Unlock()
	s.events.publish(Event{Kind: EventState, State: Greeting})

	fallbackFrom := active[0].ID
	s.complete(run, prompt.GreetingMessage, active, settings, s.greeting, GreetingFallback, fallbackFrom)
	return nil
}

// Send appends the user's message and dispatches it to the active personas
func (s *Session) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	switch s.state {
	case Greeting, Dispatching:
		s.mu.Unlock()
		return ErrBusy
	case Selecting:
		s.mu.Unlock()
		return ErrInvalidState
	}
	active := s.activeLocked()
	msg := s.appendLocked(text, personas.SenderUser)
	s.events.publish(Event{Kind: EventMessage, Message: &msg, State: Active})
	run := s.beginLocked(ctx, Dispatching)
	settings := s.settings
	s.mu.Unlock()

	s.events.publish(Event{Kind: EventState, State: Dispatching})

	s.complete(run, text, active, settings, s.send, SendFallback, personas.SenderSystem)
	return nil
}

// Reset returns to persona selection. Pending scheduled replies and any
// in-flight dispatch are dropped.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.state == Selecting {
		s.mu.Unlock()
		return
	}
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for _, b := range s.batches {
		b.Cancel()
	}
	s.batches = nil
	s.messages = nil
	s.selected = make(map[string]bool)
	s.state = Selecting
	s.mu.Unlock()

	s.logger.Printf("session %s reset", s.id)
	s.events.publish(Event{Kind: EventReset, State: Selecting})
}

// run ties one dispatch to the epoch it started in
type run struct {
	ctx   context.Context
	epoch uint64
}

func (s *Session) beginLocked(ctx context.Context, state State) run {
	dctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = state
	return run{ctx: dctx, epoch: s.epoch}
}

func (s *Session) complete(r run, message string, active []personas.Persona, settings dispatcher.Settings, flow scheduler.Flow, fallback, fallbackFrom string) {
	res, err := s.dispatcher.Dispatch(r.ctx, message, active, settings)

	if !s.current(r.epoch) {
		return
	}

	appendFn := s.appendFor(r.epoch)
	var batch *scheduler.Batch
	if err != nil {
		s.logger.Printf("session %s: dispatch failed: %v", s.id, err)
		appendFn(fallback, fallbackFrom)
	} else {
		soleID := ""
		if len(active) == 1 {
			soleID = active[0].ID
		}
		batch = s.scheduler.Run(res, soleID, flow, appendFn)
	}

	s.mu.Lock()
	if s.epoch != r.epoch {
		s.mu.Unlock()
		if batch != nil {
			batch.Cancel()
		}
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	kept := s.batches[:0]
	for _, b := range s.batches {
		if b.Pending() > 0 {
			kept = append(kept, b)
		}
	}
	s.batches = kept
	if batch != nil && batch.Pending() > 0 {
		s.batches = append(s.batches, batch)
	}
	s.state = Active
	s.mu.Unlock()

	s.events.publish(Event{Kind: EventState, State: Active})
}

func (s *Session) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// appendFor returns an AppendFunc that drops appends once the session
// has been reset past epoch.
func (s *Session) appendFor(epoch uint64) scheduler.AppendFunc {
	return func(text, sender string) {
		if !s.registry.IsSender(sender) {
			s.logger.Printf("session %s: %v: %s", s.id, ErrUnknownSender, sender)
			return
		}

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		// Published under the lock so subscribers see IDs in order
		msg := s.appendLocked(text, sender)
		s.events.publish(Event{Kind: EventMessage, Message: &msg, State: s.state})
		s.mu.Unlock()
	}
}

func (s *Session) appendLocked(text, sender string) Message {
	s.lastID++
	msg := Message{
		ID:        s.lastID,
		Content:   text,
		Sender:    sender,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}
