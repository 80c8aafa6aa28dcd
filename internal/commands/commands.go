// Package commands handles slash command parsing for the chat TUI.
package commands

import (
	"strconv"
	"strings"

	"chaibuddies/internal/prompt"
)

// Command interface for all command types
type Command interface {
	Type() string
}

// Help returns help text
type Help struct{}

func (Help) Type() string { return "help" }

// Back resets the chat and returns to persona selection
type Back struct{}

func (Back) Type() string { return "back" }

// SetTone changes the tone preset for future replies
type SetTone struct {
	Tone prompt.Tone
}

func (SetTone) Type() string { return "tone" }

// SetTemperature changes the sampling temperature for future replies
type SetTemperature struct {
	Value float64
}

func (SetTemperature) Type() string { return "temp" }

// ShowPersonas lists the personas in the chat
type ShowPersonas struct{}

func (ShowPersonas) Type() string { return "personas" }

// ShowCalls opens the completion call log
type ShowCalls struct{}

func (ShowCalls) Type() string { return "calls" }

// Export writes the transcript to disk
type Export struct{}

func (Export) Type() string { return "export" }

// Quit leaves the program
type Quit struct{}

func (Quit) Type() string { return "quit" }

// ParseError represents a command parsing error
type ParseError struct {
	Message string
}

func (ParseError) Type() string { return "error" }

// Parse parses user input and returns the appropriate Command.
// Returns nil if the input is not a slash command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help":
		return Help{}

	case "/back", "/reset":
		return Back{}

	case "/tone":
		if len(args) == 0 {
			return ParseError{Message: "/tone requires one of: default, funny, advice, educational"}
		}
		tone, err := prompt.ParseTone(args[0])
		if err != nil {
			return ParseError{Message: err.Error()}
		}
		return SetTone{Tone: tone}

	case "/temp":
		if len(args) == 0 {
			return ParseError{Message: "/temp requires a value between 0 and 1"}
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v < 0 || v > 1 {
			return ParseError{Message: "/temp value must be a number between 0 and 1"}
		}
		return SetTemperature{Value: v}

	case "/personas":
		return ShowPersonas{}

	case "/calls":
		return ShowCalls{}

	case "/export":
		return Export{}

	case "/quit", "/exit":
		return Quit{}

	default:
		return ParseError{Message: "unknown command: " + cmd}
	}
}

// HelpText returns the help text for all available commands.
func HelpText() string {
	return `Available commands:
  /help                  - Show this help
  /back                  - Leave the chat and pick personas again
  /tone <name>           - Set tone: default, funny, advice, educational
  /temp <0..1>           - Set creativity (temperature)
  /personas              - List personas in this chat
  /calls                 - Show recent completion calls
  /export                - Save the transcript as markdown
  /quit                  - Exit`
}
