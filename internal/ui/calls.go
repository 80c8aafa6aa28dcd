// internal/ui/calls.go
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"chaibuddies/internal/calllog"
)

// CallsState holds the state for the call log browser
type CallsState struct {
	entries   []calllog.Entry
	cursor    int
	scrollTop int
	maxHeight int
}

func NewCallsState() *CallsState {
	return &CallsState{maxHeight: 20}
}

// Up moves the cursor up
func (c *CallsState) Up() {
	if c.cursor > 0 {
		c.cursor--
		if c.cursor < c.scrollTop {
			c.scrollTop = c.cursor
		}
	}
}

// Down moves the cursor down
func (c *CallsState) Down() {
	if c.cursor < len(c.entries)-1 {
		c.cursor++
		if c.cursor >= c.scrollTop+c.maxHeight {
			c.scrollTop = c.cursor - c.maxHeight + 1
		}
	}
}

// Load fetches the newest calls
func (c *CallsState) Load(ctx context.Context, store *calllog.Store) error {
	if store == nil {
		return fmt.Errorf("call log disabled (set calllog.path)")
	}
	entries, err := store.Recent(ctx, 200)
	if err != nil {
		return err
	}
	c.entries = entries
	c.cursor = 0
	c.scrollTop = 0
	return nil
}

// SetMaxHeight updates the max visible height
func (c *CallsState) SetMaxHeight(height int) {
	c.maxHeight = max(height-10, 5)
}

// Render renders the call log overlay
func (c *CallsState) Render(width, height int) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render("COMPLETION CALLS"))
	content.WriteString("\n\n")

	if len(c.entries) == 0 {
		content.WriteString(DimStyle.Render("No calls recorded yet."))
	} else {
		visibleEnd := min(c.scrollTop+c.maxHeight, len(c.entries))

		header := fmt.Sprintf("  %-11s  %-10s  %-5s  %-11s  %8s  %s",
			"When", "Persona", "Group", "Tone", "Latency", "Result")
		content.WriteString(DimStyle.Render(header))
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(strings.Repeat("-", 70)))
		content.WriteString("\n")

		for i := c.scrollTop; i < visibleEnd; i++ {
			e := c.entries[i]

			when := e.CreatedAt.Local().Format("01-02 15:04")
			if time.Since(e.CreatedAt) < 24*time.Hour {
				when = e.CreatedAt.Local().Format("Today 15:04")
			}

			group := "no"
			if e.Group {
				group = "yes"
			}

			result := StatusOK.Render("ok")
			if e.Error != "" {
				msg := e.Error
				if len(msg) > 30 {
					msg = msg[:30] + ".."
				}
				result = StatusCrit.Render(msg)
			}

			cursor := "  "
			lineStyle := DimStyle
			if i == c.cursor {
				cursor = "> "
				lineStyle = lipgloss.NewStyle().Foreground(Cyan)
			}

			line := fmt.Sprintf("%-11s  %-10s  %-5s  %-11s  %6dms",
				when, e.PersonaID, group, e.Tone, e.LatencyMs)
			content.WriteString(cursor)
			content.WriteString(lineStyle.Render(line))
			content.WriteString("  ")
			content.WriteString(result)
			content.WriteString("\n")
		}

		if len(c.entries) > c.maxHeight {
			content.WriteString("\n")
			content.WriteString(DimStyle.Render(fmt.Sprintf("Showing %d-%d of %d",
				c.scrollTop+1, visibleEnd, len(c.entries))))
		}
	}

	content.WriteString("\n\n")
	content.WriteString(DimStyle.Render("Up/Down: Navigate | Esc: Close"))

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 2).
		MaxWidth(width - 10).
		MaxHeight(height - 4)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlayStyle.Render(content.String()),
	)
}
