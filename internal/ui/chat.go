// internal/ui/chat.go
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"chaibuddies/internal/models"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/session"
)

// ChatView wraps the conversation log with a viewport for scrolling
type ChatView struct {
	Viewport viewport.Model
	renderer *glamour.TermRenderer
}

func NewChatView(width, height int) *ChatView {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.MouseWheelEnabled = true

	v := &ChatView{Viewport: vp}
	v.setRenderer(width)
	return v
}

func (v *ChatView) setRenderer(width int) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		v.renderer = nil
		return
	}
	v.renderer = r
}

// Resize adjusts the viewport and re-wraps markdown
func (v *ChatView) Resize(width, height int) {
	if v.Viewport.Width != width {
		v.setRenderer(width)
	}
	v.Viewport.Width = width
	v.Viewport.Height = height
}

// SetMessages re-renders the log and scrolls to the newest message
func (v *ChatView) SetMessages(reg *personas.Registry, msgs []session.Message) {
	v.Viewport.SetContent(RenderMessages(reg, msgs, v.renderer))
	v.Viewport.GotoBottom()
}

// RenderMessages draws the log. Persona replies go through the markdown
// renderer when one is available.
func RenderMessages(reg *personas.Registry, msgs []session.Message, renderer *glamour.TermRenderer) string {
	var sb strings.Builder

	for _, msg := range msgs {
		ts := msg.Timestamp.Format("15:04")
		header := SenderStyle(reg, msg.Sender).Render(fmt.Sprintf("[%s] %s%s:", ts, avatar(reg, msg.Sender), SenderName(reg, msg.Sender)))
		sb.WriteString(header)
		sb.WriteString("\n")

		body := msg.Content
		if renderer != nil && msg.Sender != personas.SenderUser && msg.Sender != personas.SenderSystem {
			if out, err := renderer.Render(body); err == nil {
				sb.WriteString(strings.TrimRight(out, "\n"))
				sb.WriteString("\n\n")
				continue
			}
		}

		for _, line := range strings.Split(body, "\n") {
			sb.WriteString("  ")
			if msg.Sender == personas.SenderSystem {
				sb.WriteString(SystemStyle.Render(line))
			} else {
				sb.WriteString(line)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func avatar(reg *personas.Registry, sender string) string {
	if p, ok := reg.Get(sender); ok && p.Avatar != "" {
		return p.Avatar + " "
	}
	return ""
}

// RenderSidebar lists the personas in the chat plus the backend status
func RenderSidebar(s *session.Session, info models.ModelInfo, status models.ModelStatus) string {
	reg := s.Registry()
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("IN THIS CHAT"))
	sb.WriteString("\n\n")
	for _, p := range s.Active() {
		sb.WriteString(SenderStyle(reg, p.ID).Render(p.Name))
		sb.WriteString("\n")
	}

	settings := s.Settings()
	sb.WriteString("\n")
	sb.WriteString(TitleStyle.Render("SETTINGS"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("tone  %s\n", settings.Tone))
	sb.WriteString(fmt.Sprintf("temp  %.1f\n", settings.Temperature))

	sb.WriteString("\n")
	sb.WriteString(TitleStyle.Render("MODEL"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%s %s\n", statusIndicator(status), info.ID))
	sb.WriteString(DimStyle.Render(status.String()))
	sb.WriteString("\n")

	return sb.String()
}
