// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/nodepulse/business/node/domain"
)

var (
	reachableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	unreachableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
)

// StatusComponent renders the primary and fallback connections.
type StatusComponent struct {
	status domain.ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update replaces the displayed status.
func (s *StatusComponent) Update(status domain.ConnectionStatus) {
	s.status = status
}

// View renders the status component.
func (s *StatusComponent) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("CONNECTIONS"))
	sb.WriteString("\n\n")
	sb.WriteString(connectionLine("Primary", s.status.Primary))
	sb.WriteString("\n")
	sb.WriteString(connectionLine("Fallback", s.status.Fallback))
	return sb.String()
}

func connectionLine(name string, c domain.NodeConnection) string {
	var icon string
	var style lipgloss.Style
	switch c.State {
	case domain.StateReachable:
		icon, style = "●", reachableStyle
	case domain.StateUnreachable:
		icon, style = "○", unreachableStyle
	case domain.StateConfigured:
		icon, style = "◌", pendingStyle
	default:
		icon, style = "·", mutedStyle
	}

	line := fmt.Sprintf("├─ %s: %s", name, style.Render(icon+" "+string(c.State)))
	if c.URL != "" {
		line += " " + mutedStyle.Render(c.URL)
	}
	if c.ChainID != 0 {
		line += mutedStyle.Render(fmt.Sprintf(" (chain %d)", c.ChainID))
	}
	if !c.LastCheckedAt.IsZero() {
		ago := time.Since(c.LastCheckedAt).Round(time.Second)
		line += mutedStyle.Render(fmt.Sprintf(" checked %s ago", ago))
	}
	return line
}
