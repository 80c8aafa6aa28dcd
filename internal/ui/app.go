// internal/ui/app.go
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chaibuddies/internal/calllog"
	"chaibuddies/internal/commands"
	"chaibuddies/internal/export"
	"chaibuddies/internal/models"
	"chaibuddies/internal/session"
)

const sidebarWidth = 26

type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCalls
)

// Deps are the collaborators the terminal front-end drives
type Deps struct {
	Session   *session.Session
	Backend   models.Model
	CallLog   *calllog.Store // nil when disabled
	ExportDir string
}

type Model struct {
	width, height int
	ready         bool

	ctx       context.Context
	session   *session.Session
	backend   models.Model
	calls     *calllog.Store
	exportDir string

	picker      *Picker
	chat        *ChatView
	callsView   *CallsState
	input       textinput.Model
	spinner     spinner.Model
	overlay     overlay
	notice      string
	events      <-chan session.Event
	unsubscribe func()
}

// sessionEventMsg carries a session event into the update loop
type sessionEventMsg session.Event

// dispatchDoneMsg reports the end of a Start or Send call
type dispatchDoneMsg struct {
	err error
}

type eventsClosedMsg struct{}

func New(ctx context.Context, deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Type a message or /help"
	input.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Chai)

	events, unsubscribe := deps.Session.Subscribe(64)

	return Model{
		ctx:         ctx,
		session:     deps.Session,
		backend:     deps.Backend,
		calls:       deps.CallLog,
		exportDir:   deps.ExportDir,
		picker:      NewPicker(deps.Session.Registry()),
		chat:        NewChatView(80, 20),
		callsView:   NewCallsState(),
		input:       input,
		spinner:     sp,
		events:      events,
		unsubscribe: unsubscribe,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.spinner.Tick, textinput.Blink)
}

func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return sessionEventMsg(e)
	}
}

func startCmd(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return dispatchDoneMsg{err: s.Start(ctx)}
	}
}

func sendCmd(ctx context.Context, s *session.Session, text string) tea.Cmd {
	return func() tea.Msg {
		return dispatchDoneMsg{err: s.Send(ctx, text)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.chat.Resize(max(m.width-sidebarWidth-4, 20), max(m.height-6, 5))
		m.input.Width = max(m.width-6, 10)
		m.callsView.SetMaxHeight(m.height)
		m.chat.SetMessages(m.session.Registry(), m.session.Messages())
		return m, nil

	case sessionEventMsg:
		m.chat.SetMessages(m.session.Registry(), m.session.Messages())
		if msg.Kind == session.EventReset {
			m.input.Blur()
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, nil

	case dispatchDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, session.ErrEmptyMessage) {
			m.notice = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	if m.overlay != overlayNone {
		switch key {
		case "esc", "f1", "q":
			m.overlay = overlayNone
		case "up", "k":
			m.callsView.Up()
		case "down", "j":
			m.callsView.Down()
		}
		return m, nil
	}

	if key == "f1" {
		m.overlay = overlayHelp
		return m, nil
	}

	if m.session.State() == session.Selecting {
		return m.handleSelectKey(key)
	}
	return m.handleChatKey(msg)
}

func (m Model) handleSelectKey(key string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch key {
	case "q":
		return m.quit()
	case "?":
		m.overlay = overlayHelp
	case "up", "k":
		m.picker.Up()
	case "down", "j":
		m.picker.Down()
	case " ", "space", "x":
		if _, err := m.session.Toggle(m.picker.Current()); err != nil {
			m.notice = err.Error()
		}
	case "a":
		if err := m.session.SelectAll(); err != nil {
			m.notice = err.Error()
		}
	case "enter":
		if len(m.session.Active()) == 0 {
			m.notice = "Select at least one persona"
			return m, nil
		}
		m.input.Focus()
		return m, startCmd(m.ctx, m.session)
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chat.Viewport, cmd = m.chat.Viewport.Update(msg)
		return m, cmd

	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.Reset()
		m.notice = ""

		if cmd := commands.Parse(text); cmd != nil {
			return m.runCommand(cmd)
		}
		if m.session.Loading() {
			m.input.SetValue(text)
			m.notice = "Wait for the replies to finish"
			return m, nil
		}
		return m, sendCmd(m.ctx, m.session, text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runCommand(cmd commands.Command) (tea.Model, tea.Cmd) {
	switch c := cmd.(type) {
	case commands.Help:
		m.overlay = overlayHelp

	case commands.Back:
		m.session.Reset()
		m.input.Blur()

	case commands.SetTone:
		if err := m.session.SetTone(c.Tone); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = "Tone set to " + c.Tone.String()
		}

	case commands.SetTemperature:
		if err := m.session.SetTemperature(c.Value); err != nil {
			m.notice = err.Error()
		} else {
			m.notice = fmt.Sprintf("Temperature set to %.2f", c.Value)
		}

	case commands.ShowPersonas:
		names := []string{}
		for _, p := range m.session.Active() {
			names = append(names, p.Name)
		}
		m.notice = "In this chat: " + strings.Join(names, ", ")

	case commands.ShowCalls:
		if err := m.callsView.Load(m.ctx, m.calls); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.overlay = overlayCalls

	case commands.Export:
		path, err := export.Write(export.FromSession(m.session), m.exportDir)
		if err != nil {
			m.notice = "Export failed: " + err.Error()
		} else {
			m.notice = "Saved " + path
		}

	case commands.Quit:
		return m.quit()

	case commands.ParseError:
		m.notice = c.Message
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m, tea.Quit
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayCalls:
		return m.callsView.Render(m.width, m.height)
	}

	if m.session.State() == session.Selecting {
		view := m.picker.Render(m.session, m.width)
		if m.notice != "" {
			view += "\n" + ErrorStyle.Render(m.notice)
		}
		return view
	}

	header := TitleStyle.Render("☕ CHAI BUDDIES")
	if m.notice != "" {
		header += "  " + DimStyle.Render(m.notice)
	}

	chatBox := ActiveBox.Render(m.chat.Viewport.View())
	sidebar := InactiveBox.Width(sidebarWidth).Render(
		RenderSidebar(m.session, m.backend.Info(), m.backend.Status()),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, chatBox, sidebar)

	prompt := m.input.View()
	if m.session.Loading() {
		prompt = m.spinner.View() + " " + DimStyle.Render("replying...") + "  " + prompt
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, prompt)
}
