// internal/scheduler/scheduler.go
package scheduler

import (
	"sync"
	"time"

	"chaibuddies/internal/dispatcher"
)

// Flow sets the spacing of staggered replies. After the first reply each
// one lands Base plus a random share of Spread after the schedule starts.
type Flow struct {
	Base   time.Duration
	Spread time.Duration
}

var (
	GreetingFlow = Flow{Base: 1000 * time.Millisecond, Spread: 2000 * time.Millisecond}
	SendFlow     = Flow{Base: 1200 * time.Millisecond, Spread: 2200 * time.Millisecond}
)

// FlowFromMillis builds a Flow from configuration values
func FlowFromMillis(base, spread int) Flow {
	return Flow{Base: time.Duration(base) * time.Millisecond, Spread: time.Duration(spread) * time.Millisecond}
}

// Delivery is one reply waiting to be shown
type Delivery struct {
	PersonaID string
	Text      string
	Delay     time.Duration
}

// AppendFunc adds a message to the conversation log
type AppendFunc func(text, senderID string)

// Plan orders the replies of a dispatch result and assigns their delays.
// A single result is attributed to soleID and shown at once. Group
// replies are shuffled; the first is immediate and each later one gets an
// independently drawn delay.
func Plan(res dispatcher.Result, soleID string, flow Flow, rnd Rand) []Delivery {
	if !res.IsGroup() {
		return []Delivery{{PersonaID: soleID, Text: res.Text()}}
	}

	replies := res.Replies()
	ids := res.IDs()
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	plan := make([]Delivery, 0, len(ids))
	for i, id := range ids {
		var delay time.Duration
		if i > 0 {
			delay = flow.Base + time.Duration(rnd.Float64()*float64(flow.Spread))
		}
		plan = append(plan, Delivery{PersonaID: id, Text: replies[id], Delay: delay})
	}
	return plan
}

// Scheduler turns plans into timed appends
type Scheduler struct {
	clock Clock
	rand  Rand
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithRand(r Rand) Option {
	return func(s *Scheduler) { s.rand = r }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{clock: RealClock{}, rand: DefaultRand()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run plans a result and schedules it
func (s *Scheduler) Run(res dispatcher.Result, soleID string, flow Flow, appendFn AppendFunc) *Batch {
	return s.Schedule(Plan(res, soleID, flow, s.rand), appendFn)
}

// Schedule appends zero-delay deliveries before returning and arms a
// timer for the rest.
func (s *Scheduler) Schedule(plan []Delivery, appendFn AppendFunc) *Batch {
	b := &Batch{}
	for _, d := range plan {
		if d.Delay <= 0 {
			appendFn(d.Text, d.PersonaID)
			continue
		}

		b.mu.Lock()
		b.pending++
		b.timers = append(b.timers, s.clock.AfterFunc(d.Delay, func() {
			if !b.take() {
				return
			}
			appendFn(d.Text, d.PersonaID)
		}))
		b.mu.Unlock()
	}
	return b
}

// Batch is the set of appends armed by one Schedule call
type Batch struct {
	mu        sync.Mutex
	timers    []Timer
	pending   int
	cancelled bool
}

func (b *Batch) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelled {
		return false
	}
	b.pending--
	return true
}

// Cancel stops every append that has not fired yet
func (b *Batch) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelled {
		return
	}
	b.cancelled = true
	for _, t := range b.timers {
		t.Stop()
	}
	b.pending = 0
}

// Pending counts appends still waiting
func (b *Batch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}
