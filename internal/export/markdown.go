// internal/export/markdown.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chaibuddies/internal/personas"
	"chaibuddies/internal/session"
)

// Line is one chat message in a transcript
type Line struct {
	Sender    string
	Name      string
	Content   string
	Timestamp time.Time
}

// Transcript is a snapshot of a chat prepared for download
type Transcript struct {
	SessionID    string
	CreatedAt    time.Time
	ExportedAt   time.Time
	Participants []string // display names, registry order
	Temperature  float64
	Tone         string
	Lines        []Line
}

// FromSession snapshots a session's log and settings
func FromSession(s *session.Session) *Transcript {
	reg := s.Registry()
	settings := s.Settings()

	t := &Transcript{
		SessionID:   s.ID(),
		CreatedAt:   s.CreatedAt(),
		ExportedAt:  time.Now(),
		Temperature: settings.Temperature,
		Tone:        settings.Tone.String(),
	}
	for _, p := range s.Active() {
		t.Participants = append(t.Participants, p.Name)
	}
	for _, m := range s.Messages() {
		t.Lines = append(t.Lines, Line{
			Sender:    m.Sender,
			Name:      senderName(reg, m.Sender),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return t
}

func senderName(reg *personas.Registry, id string) string {
	switch id {
	case personas.SenderUser:
		return "You"
	case personas.SenderSystem:
		return "System"
	}
	if p, ok := reg.Get(id); ok {
		return p.Name
	}
	return id
}

// Markdown renders a transcript
func Markdown(t *Transcript) string {
	var sb strings.Builder

	sb.WriteString("# Chai Buddies chat\n\n")

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Session:** `%s`\n\n", t.SessionID))
	sb.WriteString(fmt.Sprintf("**Started:** %s\n\n", t.CreatedAt.Format("2006-01-02 15:04:05")))
	if len(t.Participants) > 0 {
		sb.WriteString("**With:** ")
		sb.WriteString(strings.Join(t.Participants, ", "))
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Tone:** %s · **Temperature:** %.1f\n\n", t.Tone, t.Temperature))
	sb.WriteString("---\n\n")

	sb.WriteString("## Transcript\n\n")
	if len(t.Lines) == 0 {
		sb.WriteString("*No messages yet.*\n\n")
	}

	for i, line := range t.Lines {
		sb.WriteString(fmt.Sprintf("### [%s] %s\n\n", line.Timestamp.Format("15:04:05"), line.Name))

		content := strings.TrimSpace(line.Content)
		if containsCodeBlock(content) {
			sb.WriteString(content)
			sb.WriteString("\n")
		} else {
			for _, l := range strings.Split(content, "\n") {
				sb.WriteString("> ")
				sb.WriteString(l)
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")

		if i < len(t.Lines)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported on %s*\n", t.ExportedAt.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// Filename is the download name for a transcript: YYYY-MM-DD-chat-<id>.md
func Filename(t *Transcript) string {
	id := sanitizeFilename(t.SessionID)
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-chat-%s.md", t.CreatedAt.Format("2006-01-02"), id)
}

// Write saves a transcript under dir/transcripts and returns the path
func Write(t *Transcript, dir string) (string, error) {
	outDir := filepath.Join(dir, "transcripts")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create transcripts directory: %w", err)
	}

	path := filepath.Join(outDir, Filename(t))
	if err := os.WriteFile(path, []byte(Markdown(t)), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// sanitizeFilename keeps lowercase letters, digits, '-' and '_'
func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")
	if result == "" {
		result = "chat"
	}
	return result
}

func containsCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}
