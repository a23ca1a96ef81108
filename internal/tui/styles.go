package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/porteria/visitas-app/internal/notify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)

	dangerTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// badgeStyle maps a status presentation token to a colored badge. Tokens are
// presentation-only; nothing behavioral hangs off these.
func badgeStyle(token string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch token {
	case "status-active":
		return base.Background(lipgloss.Color("28")).Foreground(lipgloss.Color("255"))
	case "status-pending":
		return base.Background(lipgloss.Color("178")).Foreground(lipgloss.Color("232"))
	case "status-expired":
		return base.Background(lipgloss.Color("240")).Foreground(lipgloss.Color("255"))
	case "status-cancelled":
		return base.Background(lipgloss.Color("124")).Foreground(lipgloss.Color("255"))
	case "status-used":
		return base.Background(lipgloss.Color("25")).Foreground(lipgloss.Color("255"))
	default:
		return base.Background(lipgloss.Color("236")).Foreground(lipgloss.Color("250"))
	}
}

// statusGlyph maps an icon token to a terminal glyph.
func statusGlyph(token string) string {
	switch token {
	case "checkmark-circle":
		return "✓"
	case "ban-outline":
		return "✗"
	case "time-outline":
		return "◷"
	default:
		return "•"
	}
}

func toastStyle(severity notify.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch severity {
	case notify.SeverityDanger:
		return base.Background(lipgloss.Color("124")).Foreground(lipgloss.Color("255"))
	case notify.SeverityWarning:
		return base.Background(lipgloss.Color("178")).Foreground(lipgloss.Color("232"))
	default:
		return base.Background(lipgloss.Color("28")).Foreground(lipgloss.Color("255"))
	}
}
