// internal/ui/styles.go
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"chaibuddies/internal/models"
	"chaibuddies/internal/personas"
)

var (
	// Colors
	Cyan     = lipgloss.Color("#00FFFF")
	Green    = lipgloss.Color("#00FF00")
	Yellow   = lipgloss.Color("#FFD700")
	Orange   = lipgloss.Color("#FFA500")
	Red      = lipgloss.Color("#FF6B6B")
	Magenta  = lipgloss.Color("#FF00FF")
	SkyBlue  = lipgloss.Color("#87CEEB")
	Chai     = lipgloss.Color("#C68642")
	Dim      = lipgloss.Color("#555555")
	White    = lipgloss.Color("#FFFFFF")
	DarkGray = lipgloss.Color("#333333")

	// Persona colors are handed out in registry order
	personaPalette = []lipgloss.Color{Cyan, Magenta, Orange, Green, Chai}

	UserColor   = SkyBlue
	SystemColor = Yellow

	// Box styles
	ActiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	InactiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Dim)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Chai)

	UserStyle = lipgloss.NewStyle().
			Foreground(SkyBlue).
			Bold(true)

	SystemStyle = lipgloss.NewStyle().
			Foreground(Yellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	// Status indicators
	StatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
	StatusCrit = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// SenderColor returns the color for a message sender
func SenderColor(reg *personas.Registry, sender string) lipgloss.Color {
	switch sender {
	case personas.SenderUser:
		return UserColor
	case personas.SenderSystem:
		return SystemColor
	}
	for i, id := range reg.IDs() {
		if id == sender {
			return personaPalette[i%len(personaPalette)]
		}
	}
	return White
}

// SenderStyle returns the header style for a message sender
func SenderStyle(reg *personas.Registry, sender string) lipgloss.Style {
	switch sender {
	case personas.SenderUser:
		return UserStyle
	case personas.SenderSystem:
		return SystemStyle
	}
	return lipgloss.NewStyle().Foreground(SenderColor(reg, sender)).Bold(true)
}

// SenderName returns the display name for a message sender
func SenderName(reg *personas.Registry, sender string) string {
	switch sender {
	case personas.SenderUser:
		return "You"
	case personas.SenderSystem:
		return "System"
	}
	if p, ok := reg.Get(sender); ok {
		return p.Name
	}
	return sender
}

func statusIndicator(status models.ModelStatus) string {
	switch status {
	case models.StatusResponding:
		return StatusWarn.Render("●")
	case models.StatusError:
		return StatusCrit.Render("✗")
	case models.StatusTimeout:
		return DimStyle.Render("◌")
	default: // Idle
		return StatusOK.Render("●")
	}
}
