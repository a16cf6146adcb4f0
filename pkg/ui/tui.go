package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/nodepulse/business/node/domain"
	"github.com/fd1az/nodepulse/pkg/ui/components"
)

// Feed publishes snapshots produced by the background prober.
type Feed interface {
	Subscribe(buffer int) (<-chan domain.HealthSnapshot, func())
	Latest() (domain.HealthSnapshot, bool)
}

// Options configures the dashboard.
type Options struct {
	Title   string
	Feed    Feed
	Status  func() domain.ConnectionStatus
	Refresh func(ctx context.Context) domain.HealthSnapshot // optional, bound to "r"
}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	opts    Options
	updates <-chan domain.HealthSnapshot

	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	sync        *components.SyncComponent
	connections *components.StatusComponent

	width      int
	quitting   bool
	refreshing bool
	lastUpdate time.Time
	errors     []ErrorEntry // last 3
}

// New creates a new TUI model reading snapshots from updates.
func New(opts Options, updates <-chan domain.HealthSnapshot) Model {
	if opts.Title == "" {
		opts.Title = "nodepulse"
	}

	m := Model{
		opts:        opts,
		updates:     updates,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorSecondary))),
		sync:        components.NewSyncComponent(),
		connections: components.NewStatusComponent(),
		errors:      make([]ErrorEntry, 0, 3),
	}

	if opts.Feed != nil {
		if snap, ok := opts.Feed.Latest(); ok {
			m.apply(snap)
		}
	}
	return m
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listen(m.updates))
}

// listen waits for the next snapshot on ch.
func listen(ch <-chan domain.HealthSnapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	refresh := m.opts.Refresh
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return SnapshotMsg{Snapshot: refresh(ctx)}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.opts.Refresh == nil || m.refreshing {
				return m, nil
			}
			m.refreshing = true
			return m, m.refreshCmd()
		case key.Matches(msg, m.keys.Clear):
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.sync.SetWidth(msg.Width/2 - 20)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SnapshotMsg:
		m.apply(msg.Snapshot)
		if m.refreshing {
			m.refreshing = false
			return m, nil
		}
		return m, listen(m.updates)

	case feedClosedMsg:
		m.updates = nil

	case ErrorMsg:
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
	}

	return m, nil
}

func (m *Model) apply(snap domain.HealthSnapshot) {
	m.sync.Update(snap)
	if m.opts.Status != nil {
		m.connections.Update(m.opts.Status())
	}
	m.lastUpdate = time.Now()
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" " + m.opts.Title + " "))
	b.WriteString("  ")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	left := m.sync.View()
	right := m.connections.View()
	if m.width > 100 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			BoxStyle.Width(m.width/2-2).Render(left),
			BoxStyle.Width(m.width/2-2).Render(right),
		))
	} else {
		b.WriteString(BoxStyle.Render(left))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(right))
	}
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(ErrorHeaderStyle.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.refreshing {
		parts = append(parts, m.spinner.View()+" refreshing")
	} else if m.updates != nil {
		parts = append(parts, m.spinner.View()+" live")
	} else {
		parts = append(parts, MutedValue.Render("○ feed stopped"))
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	var updates <-chan domain.HealthSnapshot
	if opts.Feed != nil {
		ch, cancel := opts.Feed.Subscribe(4)
		defer cancel()
		updates = ch
	}

	program := tea.NewProgram(New(opts, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
