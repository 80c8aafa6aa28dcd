// internal/dispatcher/result.go
package dispatcher

import (
	"context"
	"maps"
	"slices"
	"time"

	"chaibuddies/internal/prompt"
)

// Result is either a single reply or a set of replies keyed by persona ID
type Result struct {
	group   bool
	text    string
	replies map[string]string
}

func Single(text string) Result {
	return Result{text: text}
}

func Group(replies map[string]string) Result {
	return Result{group: true, replies: maps.Clone(replies)}
}

func (r Result) IsGroup() bool {
	return r.group
}

// Text is the single reply; empty for group results
func (r Result) Text() string {
	return r.text
}

// Replies returns a copy of the group replies; nil for single results
func (r Result) Replies() map[string]string {
	if !r.group {
		return nil
	}
	return maps.Clone(r.replies)
}

// IDs returns the persona IDs of a group result, sorted
func (r Result) IDs() []string {
	if !r.group {
		return nil
	}
	return slices.Sorted(maps.Keys(r.replies))
}

func (r Result) Len() int {
	if r.group {
		return len(r.replies)
	}
	return 1
}

// Call describes one completion call. Message text is never carried.
type Call struct {
	PersonaID   string
	Group       bool
	Temperature float64
	Tone        prompt.Tone
	PromptChars int
	ReplyChars  int
	Latency     time.Duration
	Err         error
}

// Recorder receives every completion call, successful or not
type Recorder interface {
	Record(ctx context.Context, c Call)
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Call) {}

// Recorders fans every call out to each recorder in order
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, c Call) {
	for _, r := range rs {
		r.Record(ctx, c)
	}
}
