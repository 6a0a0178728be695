// Package styles holds the terminal styling shared by engagehub commands
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"engagehub/pkg/models"
)

// Dracula color palette
const (
	CurrentLine = "#44475a"
	Foreground  = "#f8f8f2"
	Comment     = "#6272a4"
	Cyan        = "#8be9fd"
	Green       = "#50fa7b"
	Orange      = "#ffb86c"
	Pink        = "#ff79c6"
	Purple      = "#bd93f9"
	Red         = "#ff5555"
	Yellow      = "#f1fa8c"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Purple))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Cyan)).
			Width(18)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Foreground)).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Comment))

	AuthorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Pink)).
			Bold(true)

	QuoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Yellow)).
			Italic(true).
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(Yellow))

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Purple)).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Red)).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Green)).
			Bold(true)
)

// badge renders a status pill
func badge(color, text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#282a36")).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1).
		Render(text)
}

// StatusBadge colors a moderation status
func StatusBadge(s models.ModerationStatus) string {
	switch s {
	case models.ModerationApproved:
		return badge(Green, string(s))
	case models.ModerationRejected:
		return badge(Red, string(s))
	case models.ModerationSpam:
		return badge(Orange, string(s))
	default:
		return badge(Yellow, string(s))
	}
}

// Row renders one aligned label/value line
func Row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
