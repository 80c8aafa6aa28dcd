// internal/session/events_test.go
package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ResyncAfterOverflow(t *testing.T) {
	var c collector
	events, unsubscribe := c.subscribe(1)
	defer unsubscribe()

	msg := func(id int64) Event {
		return Event{Kind: EventMessage, Message: &Message{ID: id}, State: Active}
	}

	c.publish(msg(1))
	c.publish(msg(2)) // buffer full
	c.publish(msg(3)) // still full

	first := <-events
	require.Equal(t, EventMessage, first.Kind)
	assert.EqualValues(t, 1, first.Message.ID)

	c.publish(msg(4))
	resync := <-events
	assert.Equal(t, EventResync, resync.Kind)
	assert.Equal(t, Active, resync.State)

	c.publish(msg(5))
	next := <-events
	require.Equal(t, EventMessage, next.Kind)
	assert.EqualValues(t, 5, next.Message.ID)
}

func TestCollector_SlowSubscriberDoesNotAffectOthers(t *testing.T) {
	var c collector
	slow, unsubSlow := c.subscribe(1)
	defer unsubSlow()
	fast, unsubFast := c.subscribe(8)
	defer unsubFast()

	for i := int64(1); i <= 3; i++ {
		c.publish(Event{Kind: EventMessage, Message: &Message{ID: i}})
	}

	assert.Len(t, fast, 3)
	assert.Len(t, slow, 1)
}
