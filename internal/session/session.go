// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/prompt"
	"chaibuddies/internal/scheduler"
)

var (
	ErrBusy          = errors.New("a reply is already in progress")
	ErrInvalidState  = errors.New("operation not allowed in current state")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNoPersonas    = dispatcher.ErrNoPersonas
	ErrUnknownTone   = errors.New("unknown tone")
	ErrUnknownSender = errors.New("unknown sender")
)

// Fixed fallback texts shown when a dispatch fails
const (
	GreetingFallback = "Hello! How can I help you today?"
	SendFallback     = "Sorry, I couldn't process that message."
)

// State is the phase of a chat session
type State int

const (
	Selecting State = iota
	Greeting
	Active
	Dispatching
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Greeting:
		return "greeting"
	case Active:
		return "active"
	case Dispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Message is one entry in the conversation log
type Message struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one conversation: persona selection, settings and the log
type Session struct {
	id         string
	createdAt  time.Time
	registry   *personas.Registry
	dispatcher *dispatcher.Dispatcher
	scheduler  *scheduler.Scheduler
	greeting   scheduler.Flow
	send       scheduler.Flow
	logger     *log.Logger
	now        func() time.Time
	events     collector

	mu       sync.Mutex
	state    State
	selected map[string]bool
	settings dispatcher.Settings
	messages []Message
	lastID   int64
	epoch    uint64
	cancel   func()
	batches  []*scheduler.Batch
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithSettings(st dispatcher.Settings) Option {
	return func(s *Session) { s.settings = st }
}

func WithFlows(greeting, send scheduler.Flow) Option {
	return func(s *Session) {
		s.greeting = greeting
		s.send = send
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(registry *personas.Registry, d *dispatcher.Dispatcher, sched *scheduler.Scheduler, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		registry:   registry,
		dispatcher: d,
		scheduler:  sched,
		greeting:   scheduler.GreetingFlow,
		send:       scheduler.SendFlow,
		logger:     log.New(io.Discard, "", 0),
		now:        time.Now,
		selected:   make(map[string]bool),
		settings:   dispatcher.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.createdAt = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Registry() *personas.Registry {
	return s.registry
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading is true while a dispatch is outstanding
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Greeting || s.state == Dispatching
}

// Messages returns a copy of the log in append order
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Subscribe streams session events. The returned func unsubscribes and
// closes the channel. Slow subscribers miss events rather than block.
func (s *Session) Subscribe(buf int) (<-chan Event, func()) {
	return s.events.subscribe(buf)
}

// Selection

// Toggle flips a persona in or out of the active set and reports whether
// it is now active.
func (s *Session) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectableLocked(id); err != nil {
		return false, err
	}
	s.selected[id] = !s.selected[id]
	if !s.selected[id] {
		delete(s.selected, id)
	}
	return s.selected[id], nil
}

func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectableLocked(id); err != nil {
		return err
	}
	s.selected[id] = true
	return nil
}

func (s *Session) Deselect(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.selectableLocked(id); err != nil {
		return err
	}
	delete(s.selected, id)
	return nil
}

// SelectAll activates every registry persona
func (s *Session) SelectAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Selecting {
		return ErrInvalidState
	}
	for _, id := range s.registry.IDs() {
		s.selected[id] = true
	}
	return nil
}

// SetSelection replaces the active set
func (s *Session) SetSelection(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Selecting {
		return ErrInvalidState
	}
	if _, err := s.registry.Resolve(ids); err != nil {
		return err
	}
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
	return nil
}

func (s *Session) selectableLocked(id string) error {
	if s.state != Selecting {
		return ErrInvalidState
	}
	if _, ok := s.registry.Get(id); !ok {
		return fmt.Errorf("%w: %s", personas.ErrUnknownPersona, id)
	}
	return nil
}

// Active returns the selected personas in registry order
func (s *Session) Active() []personas.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

// activeLocked resolves the selection. selectableLocked admits only
// registry IDs, so Order drops nothing here.
func (s *Session) activeLocked() []personas.Persona {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	ordered := s.registry.Order(ids)
	list := make([]personas.Persona, 0, len(ordered))
	for _, id := range ordered {
		p, _ := s.registry.Get(id)
		list = append(list, p)
	}
	return list
}

func (s *Session) IsActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// StartLabel is the caption of the start action for the current selection
func (s *Session) StartLabel() string {
	active := s.Active()
	if len(active) >= 2 {
		return "Start Group Chat"
	}
	name := ""
	if len(active) == 1 {
		name = active[0].Name
	}
	return "Start Chat with " + name
}

// Settings

func (s *Session) Settings() dispatcher.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetTemperature applies to dispatches started after the call
func (s *Session) SetTemperature(t float64) error {
	next := dispatcher.Settings{Temperature: t}
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Temperature = t
	return nil
}

func (s *Session) SetTone(t prompt.Tone) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTone, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Tone = t
	return nil
}
