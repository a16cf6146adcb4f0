package components

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/nodepulse/business/node/domain"
)

var (
	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#111827"))
	badges    = map[domain.SyncState]lipgloss.Style{
		domain.SyncStateSynced:  badgeBase.Background(lipgloss.Color("#10B981")),
		domain.SyncStateSyncing: badgeBase.Background(lipgloss.Color("#F59E0B")),
		domain.SyncStateError:   badgeBase.Background(lipgloss.Color("#EF4444")),
	}
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Width(14)
)

// SyncComponent renders the latest snapshot.
type SyncComponent struct {
	bar      progress.Model
	snapshot domain.HealthSnapshot
	has      bool
}

// NewSyncComponent creates a new sync component.
func NewSyncComponent() *SyncComponent {
	return &SyncComponent{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Update replaces the displayed snapshot.
func (s *SyncComponent) Update(snap domain.HealthSnapshot) {
	s.snapshot = snap
	s.has = true
}

// SetWidth resizes the progress bar.
func (s *SyncComponent) SetWidth(w int) {
	if w > 10 {
		s.bar.Width = w
	}
}

// View renders the sync component.
func (s *SyncComponent) View() string {
	if !s.has {
		return mutedStyle.Render("Waiting for first snapshot...")
	}
	snap := s.snapshot

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("SYNC"))
	sb.WriteString("  ")
	sb.WriteString(Badge(snap.SyncState()))
	if snap.FallbackUsed() {
		sb.WriteString(mutedStyle.Render("  chain height from fallback"))
	}
	sb.WriteString("\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	row("Chain ID", FormatInt(snap.ChainID()))
	row("Node height", FormatInt(snap.NodeHeight()))
	row("Chain height", FormatInt(snap.ChainHeight()))
	if p, ok := snap.Progress(); ok {
		row("Progress", s.bar.ViewAs(p))
	}
	if est, ok := snap.EstimatedSecondsRemaining(); ok {
		row("Remaining", FormatEstimate(est))
	}
	row("Peers", FormatInt(snap.PeerCount()))
	if gwei, ok := snap.GasPriceGwei(); ok {
		row("Gas price", gwei.StringFixed(2)+" gwei")
	} else {
		row("Gas price", "-")
	}
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("cycle %s at %s", snap.CycleID(), snap.ObservedAt().Format("15:04:05"))))

	return sb.String()
}

// Badge renders a sync state as a coloured label.
func Badge(state domain.SyncState) string {
	style, ok := badges[state]
	if !ok {
		style = badgeBase.Background(lipgloss.Color("#6B7280"))
	}
	return style.Render(strings.ToUpper(string(state)))
}

// FormatInt renders v with thousands separators, or "-" when absent.
func FormatInt(v *big.Int) string {
	if v == nil {
		return "-"
	}
	digits := v.String()
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 && !(neg && sb.Len() == 1) {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

// FormatEstimate renders seconds as a rounded duration.
func FormatEstimate(seconds float64) string {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds < 0 {
		return "-"
	}
	if seconds > float64(math.MaxInt64/int64(time.Second)) {
		return "> 292 years"
	}
	d := time.Duration(seconds * float64(time.Second))
	switch {
	case d < time.Minute:
		return d.Round(time.Second).String()
	case d < 24*time.Hour:
		return d.Round(time.Minute).String()
	default:
		days := int(d / (24 * time.Hour))
		rest := (d % (24 * time.Hour)).Round(time.Hour)
		return fmt.Sprintf("%dd%s", days, rest)
	}
}
