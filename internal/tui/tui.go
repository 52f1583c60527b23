package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/eventnotify/server/internal/notifier"
)

// chrome around the feed: title, status, border, input and help lines
const chromeHeight = 8

func NewApp(opts Options) (*Model, error) {
	wsClient, err := NewWSClient(opts)
	if err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = "paste a raw backend error, /rules or /clear"
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 80
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	return &Model{
		opts:    opts,
		ws:      wsClient,
		api:     NewAPIClient(opts),
		status:  "connecting",
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:   ti,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.ws.ConnectCmd(), textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConnectedMsg:
		m.connected = true
		m.channel = msg.channel
		m.status = "subscribed to " + msg.channel
		return m, m.ws.Next()

	case DisconnectedMsg:
		m.connected = false
		m.status = fmt.Sprintf("disconnected (%v), retrying", msg.err)

		return m, tea.Batch(m.spinner.Tick, tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
			return reconnectMsg{}
		}))

	case reconnectMsg:
		return m, m.ws.ConnectCmd()

	case NotificationMsg:
		n := msg.notification
		m.push(toast{id: n.ID, kind: n.Type, message: n.Message, at: n.CreatedAt})
		return m, m.ws.Next()

	case ShutdownMsg:
		m.status = "server shutting down: " + msg.reason
		return m, m.ws.Next()

	case ServerErrorMsg:
		m.status = "server error: " + msg.err.Error()
		return m, m.ws.Next()

	case ResolvedMsg:
		m.resolving = false
		m.push(toast{kind: notifier.KindDanger, message: msg.response.Display, at: time.Now(), local: true})
		return m, nil

	case RulesMsg:
		m.rules = msg.rendered
		m.refresh()
		return m, nil

	case ErrorMsg:
		m.resolving = false
		m.status = "request failed: " + msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ws.Close()
		return m, tea.Quit

	case "esc":
		if m.rules != "" {
			m.rules = ""
			m.refresh()
		}

		return m, nil

	case "ctrl+d":
		return m, m.dismissLatest()

	case "enter":
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// runs the typed command or resolves the input as a raw error
func (m *Model) submit() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	switch value {
	case "":
		return nil

	case "/rules":
		return m.api.RulesCmd(m.viewport.Width)

	case "/clear":
		m.toasts = nil
		m.rules = ""
		m.refresh()
		return nil
	}

	if m.resolving {
		return nil
	}

	m.resolving = true
	return m.api.ResolveCmd(value)
}

// removes the newest server notification and reports the dismissal
func (m *Model) dismissLatest() tea.Cmd {
	for i := len(m.toasts) - 1; i >= 0; i-- {
		t := m.toasts[i]
		if t.local {
			continue
		}

		m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
		m.refresh()

		return func() tea.Msg {
			if err := m.ws.Dismiss(t.id); err != nil {
				return ErrorMsg{err: err}
			}

			return nil
		}
	}

	return nil
}

func (m *Model) push(t toast) {
	m.toasts = append(m.toasts, t)

	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}

	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	feedHeight := max(height-chromeHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(width-4, feedHeight)
		m.ready = true
	} else {
		m.viewport.Width = width - 4
		m.viewport.Height = feedHeight
	}

	m.input.Width = max(width-6, 10)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}

	if m.rules != "" {
		m.viewport.SetContent(m.rules)
		m.viewport.GotoTop()
		return
	}

	m.viewport.SetContent(m.feed())
	m.viewport.GotoBottom()
}

func (m *Model) feed() string {
	if len(m.toasts) == 0 {
		return statusStyle.Render("waiting for notifications")
	}

	lines := make([]string, 0, len(m.toasts))

	for _, t := range m.toasts {
		text := t.message
		if t.local {
			text = localStyle.Render("resolved: ") + text
		}

		lines = append(lines, fmt.Sprintf("%s %s %s",
			timeStyle.Render(t.at.Local().Format("15:04:05")),
			kindStyle(t.kind).Render(kindIcon(t.kind)),
			text,
		))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) View() string {
	var b strings.Builder

	title := "eventnotify"
	if m.channel != "" {
		title += " · " + m.channel
	}

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	status := m.status
	if !m.connected {
		status = m.spinner.View() + " " + status
	} else if m.resolving {
		status += " · resolving"
	}

	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	if m.ready {
		b.WriteString(borderStyle.Render(m.viewport.View()))
	} else {
		b.WriteString(m.feed())
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter resolve · /rules · /clear · esc close rules · ctrl+d dismiss · ctrl+c quit"))

	return b.String()
}
