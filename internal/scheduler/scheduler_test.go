// internal/scheduler/scheduler_test.go
package scheduler

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaibuddies/internal/dispatcher"
)

// stubRand returns fixed draws and reverses on shuffle
type stubRand struct {
	draws []float64
	next  int
}

func (r *stubRand) Float64() float64 {
	v := r.draws[r.next%len(r.draws)]
	r.next++
	return v
}

func (r *stubRand) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

type appended struct {
	text   string
	sender string
}

type sink struct {
	mu  sync.Mutex
	got []appended
}

func (s *sink) append(text, sender string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, appended{text, sender})
}

func (s *sink) all() []appended {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appended(nil), s.got...)
}

func TestPlan_Single(t *testing.T) {
	plan := Plan(dispatcher.Single("namaste"), "sandip", SendFlow, &stubRand{draws: []float64{0.5}})
	require.Len(t, plan, 1)
	assert.Equal(t, Delivery{PersonaID: "sandip", Text: "namaste", Delay: 0}, plan[0])
}

func TestPlan_Group(t *testing.T) {
	res := dispatcher.Group(map[string]string{"amitabh": "a", "sandip": "s", "shubham": "h"})
	plan := Plan(res, "", SendFlow, &stubRand{draws: []float64{0, 1}})

	require.Len(t, plan, 3)
	// sorted ids reversed by the stub shuffle
	assert.Equal(t, Delivery{PersonaID: "shubham", Text: "h", Delay: 0}, plan[0])
	assert.Equal(t, Delivery{PersonaID: "sandip", Text: "s", Delay: 1200 * time.Millisecond}, plan[1])
	assert.Equal(t, Delivery{PersonaID: "amitabh", Text: "a", Delay: 3400 * time.Millisecond}, plan[2])
}

func TestPlan_GroupDelaysWithinRange(t *testing.T) {
	res := dispatcher.Group(map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"})
	rnd := rand.New(rand.NewPCG(1, 2))

	for _, flow := range []Flow{GreetingFlow, SendFlow} {
		for range 50 {
			plan := Plan(res, "", flow, rnd)
			require.Len(t, plan, 4)
			assert.Zero(t, plan[0].Delay)

			seen := map[string]bool{}
			for i, d := range plan {
				seen[d.PersonaID] = true
				if i == 0 {
					continue
				}
				assert.GreaterOrEqual(t, d.Delay, flow.Base)
				assert.Less(t, d.Delay, flow.Base+flow.Spread)
			}
			assert.Len(t, seen, 4, "each persona delivered exactly once")
		}
	}
}

func TestPlan_ShuffleIsNotFixed(t *testing.T) {
	res := dispatcher.Group(map[string]string{"a": "1", "b": "2", "c": "3"})
	rnd := rand.New(rand.NewPCG(7, 7))

	firsts := map[string]int{}
	for range 300 {
		firsts[Plan(res, "", SendFlow, rnd)[0].PersonaID]++
	}
	assert.Len(t, firsts, 3, "every persona should sometimes go first")
}

func TestSchedule_ZeroDelayIsSynchronous(t *testing.T) {
	clock := NewFakeClock()
	s := New(WithClock(clock))
	var out sink

	b := s.Run(dispatcher.Single("hi"), "amitabh", SendFlow, out.append)

	assert.Equal(t, []appended{{"hi", "amitabh"}}, out.all())
	assert.Zero(t, b.Pending())
	assert.Zero(t, clock.Armed())
}

func TestSchedule_FiresOnClock(t *testing.T) {
	clock := NewFakeClock()
	s := New(WithClock(clock))
	var out sink

	b := s.Schedule([]Delivery{
		{PersonaID: "a", Text: "first", Delay: 0},
		{PersonaID: "b", Text: "late", Delay: 3 * time.Second},
		{PersonaID: "c", Text: "early", Delay: time.Second},
	}, out.append)

	assert.Len(t, out.all(), 1)
	assert.Equal(t, 2, b.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []appended{{"first", "a"}, {"early", "c"}}, out.all())
	assert.Equal(t, 1, b.Pending())

	clock.Advance(2 * time.Second)
	assert.Equal(t, []appended{{"first", "a"}, {"early", "c"}, {"late", "b"}}, out.all())
	assert.Zero(t, b.Pending())
}

func TestBatch_Cancel(t *testing.T) {
	clock := NewFakeClock()
	s := New(WithClock(clock), WithRand(&stubRand{draws: []float64{0.5}}))
	var out sink

	res := dispatcher.Group(map[string]string{"a": "1", "b": "2", "c": "3"})
	b := s.Run(res, "", GreetingFlow, out.append)
	require.Len(t, out.all(), 1)
	require.Equal(t, 2, b.Pending())

	b.Cancel()
	b.Cancel()
	clock.Advance(time.Minute)

	assert.Len(t, out.all(), 1)
	assert.Zero(t, b.Pending())
	assert.Zero(t, clock.Armed())
}

func TestSchedule_RealClock(t *testing.T) {
	s := New()
	done := make(chan appended, 1)

	s.Schedule([]Delivery{{PersonaID: "a", Text: "x", Delay: 5 * time.Millisecond}}, func(text, sender string) {
		done <- appended{text, sender}
	})

	select {
	case got := <-done:
		assert.Equal(t, appended{"x", "a"}, got)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestFlowFromMillis(t *testing.T) {
	assert.Equal(t, SendFlow, FlowFromMillis(1200, 2200))
	assert.Equal(t, GreetingFlow, FlowFromMillis(1000, 2000))
}
