// internal/ui/picker.go
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chaibuddies/internal/personas"
	"chaibuddies/internal/session"
)

// Picker holds the cursor for the persona selection screen
type Picker struct {
	ids    []string
	cursor int
}

func NewPicker(reg *personas.Registry) *Picker {
	return &Picker{ids: reg.IDs()}
}

// Up moves the cursor up
func (p *Picker) Up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Down moves the cursor down
func (p *Picker) Down() {
	if p.cursor < len(p.ids)-1 {
		p.cursor++
	}
}

// Current returns the persona ID under the cursor
func (p *Picker) Current() string {
	if p.cursor >= 0 && p.cursor < len(p.ids) {
		return p.ids[p.cursor]
	}
	return ""
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dim).
			Padding(0, 1)

	selectedCardStyle = cardStyle.BorderForeground(Chai)
)

// Render draws the persona cards and the start label
func (p *Picker) Render(s *session.Session, width int) string {
	reg := s.Registry()
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("☕ CHAI BUDDIES"))
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("Pick who joins the chat"))
	sb.WriteString("\n\n")

	cardWidth := max(width-6, 30)
	for i, id := range p.ids {
		persona, ok := reg.Get(id)
		if !ok {
			continue
		}

		check := "[ ]"
		style := cardStyle
		if s.IsActive(id) {
			check = StatusOK.Render("[x]")
			style = selectedCardStyle
		}

		cursor := "  "
		if i == p.cursor {
			cursor = TitleStyle.Render("▸ ")
		}

		var card strings.Builder
		card.WriteString(fmt.Sprintf("%s %s %s\n", check, persona.Avatar, SenderStyle(reg, id).Render(persona.Name)))
		card.WriteString(DimStyle.Render(persona.Title))
		card.WriteString("\n")
		card.WriteString(strings.Join(persona.Specialties, " · "))

		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cursor, style.Width(cardWidth).Render(card.String())))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if len(s.Active()) == 0 {
		sb.WriteString(DimStyle.Render("Select at least one persona"))
	} else {
		sb.WriteString(StatusOK.Render("⏎ " + s.StartLabel()))
	}
	sb.WriteString("\n\n")
	sb.WriteString(DimStyle.Render("↑/↓ move · space toggle · a select all · enter start · ? help · ctrl+c quit"))
	return sb.String()
}
