// internal/export/markdown_test.go
package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chaibuddies/internal/dispatcher"
	"chaibuddies/internal/models"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/scheduler"
	"chaibuddies/internal/session"
)

func sampleTranscript() *Transcript {
	at := time.Date(2026, 2, 1, 14, 30, 0, 0, time.UTC)
	return &Transcript{
		SessionID:    "4f1c2d9e-aaaa-bbbb-cccc-000000000000",
		CreatedAt:    at,
		ExportedAt:   at.Add(time.Hour),
		Participants: []string{"Shubham Londhe", "Sandip Das"},
		Temperature:  0.7,
		Tone:         "funny",
		Lines: []Line{
			{Sender: "user", Name: "You", Content: "Kubernetes kaise seekhu?", Timestamp: at},
			{Sender: "sandip", Name: "Sandip Das", Content: "Start with pods.\nThen deployments.", Timestamp: at.Add(15 * time.Second)},
			{Sender: "shubham", Name: "Shubham Londhe", Content: "```yaml\nkind: Pod\n```", Timestamp: at.Add(30 * time.Second)},
		},
	}
}

func TestMarkdown(t *testing.T) {
	result := Markdown(sampleTranscript())

	for _, want := range []string{
		"# Chai Buddies chat",
		"**Session:** `4f1c2d9e-aaaa-bbbb-cccc-000000000000`",
		"**With:** Shubham Londhe, Sandip Das",
		"**Tone:** funny",
		"### [14:30:00] You",
		"### [14:30:15] Sandip Das",
		"> Start with pods.\n> Then deployments.",
		"```yaml\nkind: Pod\n```",
		"*Exported on 2026-02-01 15:30:00*",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output", want)
		}
	}

	if strings.Contains(result, "> ```yaml") {
		t.Error("Code blocks should not be quoted")
	}
}

func TestMarkdownEmpty(t *testing.T) {
	tr := sampleTranscript()
	tr.Lines = nil
	if !strings.Contains(Markdown(tr), "*No messages yet.*") {
		t.Error("Expected empty transcript marker")
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(sampleTranscript(), dir)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	want := filepath.Join(dir, "transcripts", "2026-02-01-chat-4f1c2d9e.md")
	if path != want {
		t.Errorf("Expected path %s, got %s", want, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !strings.Contains(string(data), "Sandip Das") {
		t.Error("Expected transcript content in file")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple", "simple"},
		{"with spaces", "with-spaces"},
		{"special!@#chars", "specialchars"},
		{"---", "chat"},
		{"a--b", "a-b"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFromSession(t *testing.T) {
	reg, err := personas.NewRegistry(personas.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	d := dispatcher.New(models.NewEcho(), reg)
	s := session.New(reg, d, scheduler.New(scheduler.WithClock(scheduler.NewFakeClock())), session.WithID("sess-1"))

	if err := s.Select("amitabh"); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Send(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	tr := FromSession(s)
	if tr.SessionID != "sess-1" {
		t.Errorf("Expected session id, got %s", tr.SessionID)
	}
	if len(tr.Participants) != 1 || tr.Participants[0] != "Amitabh Soni" {
		t.Errorf("Unexpected participants: %v", tr.Participants)
	}
	if len(tr.Lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(tr.Lines))
	}
	if tr.Lines[0].Name != "Amitabh Soni" || tr.Lines[1].Name != "You" {
		t.Errorf("Unexpected sender names: %+v", tr.Lines[:2])
	}
}
