// internal/hooks/client_test.go
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/prompt"
)

type sink struct {
	mu     sync.Mutex
	events []Event
}

func (s *sink) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode: %v", err)
		}
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestRecordReply(t *testing.T) {
	var s sink
	srv := httptest.NewServer(s.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	c.Record(context.Background(), dispatcher.Call{
		PersonaID:  "sandip",
		Group:      true,
		Tone:       prompt.ToneFunny,
		ReplyChars: 42,
		Latency:    1500 * time.Millisecond,
	})
	c.Wait()

	if len(s.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.events))
	}
	ev := s.events[0]
	if ev.Type != EventReply {
		t.Errorf("type = %q", ev.Type)
	}
	if ev.Source != "chaibuddies" || ev.Timestamp != 1700000000 {
		t.Errorf("unexpected envelope: %+v", ev)
	}
	want := map[string]string{
		"persona":     "sandip",
		"group":       "true",
		"tone":        "funny",
		"latency_ms":  "1500",
		"reply_chars": "42",
	}
	for k, v := range want {
		if ev.Data[k] != v {
			t.Errorf("data[%s] = %q, want %q", k, ev.Data[k], v)
		}
	}
}

func TestRecordError(t *testing.T) {
	var s sink
	srv := httptest.NewServer(s.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Record(context.Background(), dispatcher.Call{
		PersonaID: "amitabh",
		Err:       errors.New(strings.Repeat("x", 300)),
	})
	c.Wait()

	if len(s.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.events))
	}
	ev := s.events[0]
	if ev.Type != EventError {
		t.Errorf("type = %q", ev.Type)
	}
	if len(ev.Data["error"]) != 200 || !strings.HasSuffix(ev.Data["error"], "...") {
		t.Errorf("error not truncated: %d chars", len(ev.Data["error"]))
	}
	if _, ok := ev.Data["reply_chars"]; ok {
		t.Error("reply_chars should be absent on error")
	}
}

func TestUnreachableEndpoint(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/event")
	c.Emit(EventReply, nil)

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return for an unreachable endpoint")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdefghij", 8); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	// "é" is two bytes; a byte cut at 4 would split the second one
	if got := truncate("aééééé", 7); got != "aé..." || !utf8.ValidString(got) {
		t.Errorf("got %q", got)
	}
}

func TestRejectedEventIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := NewClient(srv.URL, WithLogger(log.New(&buf, "", 0)))
	c.Emit(EventReply, nil)
	c.Wait()

	if !strings.Contains(buf.String(), "rejected with status 400") {
		t.Errorf("log = %q", buf.String())
	}
}
