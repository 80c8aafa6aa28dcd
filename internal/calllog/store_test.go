// internal/calllog/store_test.go
package calllog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/prompt"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "calls.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Record(ctx, dispatcher.Call{
		PersonaID:   "sandip",
		Group:       true,
		Temperature: 0.7,
		Tone:        prompt.ToneFunny,
		PromptChars: 900,
		ReplyChars:  120,
		Latency:     1500 * time.Millisecond,
	})
	store.Record(ctx, dispatcher.Call{
		PersonaID: "sandip",
		Tone:      prompt.ToneDefault,
		Latency:   500 * time.Millisecond,
		Err:       errors.New("quota exceeded"),
	})
	store.Record(ctx, dispatcher.Call{PersonaID: "amitabh", Tone: prompt.ToneDefault, Latency: time.Second})

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].PersonaID != "amitabh" {
		t.Errorf("Expected newest entry first, got %s", entries[0].PersonaID)
	}
	if entries[1].Error != "quota exceeded" {
		t.Errorf("Expected error text, got %q", entries[1].Error)
	}

	oldest := entries[2]
	if !oldest.Group || oldest.Tone != "funny" || oldest.LatencyMs != 1500 || oldest.PromptChars != 900 {
		t.Errorf("Unexpected entry: %+v", oldest)
	}
	if oldest.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(limited))
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, c := range []dispatcher.Call{
		{PersonaID: "shubham", Latency: 100 * time.Millisecond},
		{PersonaID: "shubham", Latency: 300 * time.Millisecond, Err: errors.New("boom")},
		{PersonaID: "amitabh", Latency: 50 * time.Millisecond},
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 personas, got %d", len(stats))
	}

	if stats[0].PersonaID != "amitabh" || stats[0].Calls != 1 || stats[0].Failures != 0 {
		t.Errorf("Unexpected amitabh stats: %+v", stats[0])
	}
	if stats[1].PersonaID != "shubham" || stats[1].Calls != 2 || stats[1].Failures != 1 {
		t.Errorf("Unexpected shubham stats: %+v", stats[1])
	}
	if stats[1].AvgLatencyMs != 200 {
		t.Errorf("Expected avg latency 200, got %v", stats[1].AvgLatencyMs)
	}
}

func TestStoreImplementsRecorder(t *testing.T) {
	var _ dispatcher.Recorder = (*Store)(nil)
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath("/data"); got != filepath.Join("/data", "calls.db") {
		t.Errorf("DefaultPath() = %s", got)
	}
}
