package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Text styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#DEDEDE"))

	Muted = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#777777"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Width(14)

	FilterStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC")).
			Padding(0, 2)

	// Beacon colours, by how interesting the event is when watching a feed
	lifecycleEvent = lipgloss.NewStyle().Foreground(lipgloss.Color("#43BF6D")).Bold(true)
	progressEvent  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
	qualityEvent   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D7AF5F"))
	errorEvent     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	heartbeatEvent = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
)

// Event returns the style used for a beacon's event name
func Event(name string) lipgloss.Style {
	switch name {
	case "IMPRESSION", "PLAY_REQUEST", "PLAY", "RESUME", "PAUSE", "REPLAY", "SEEK":
		return lifecycleEvent
	case "PLAY_REACHED_25_PERCENT", "PLAY_REACHED_50_PERCENT", "PLAY_REACHED_75_PERCENT", "PLAY_REACHED_100_PERCENT":
		return progressEvent
	case "SOURCE_SELECTED", "AUDIO_SELECTED", "CAPTIONS", "FLAVOR_SWITCHED":
		return qualityEvent
	case "ERROR":
		return errorEvent
	default:
		return heartbeatEvent
	}
}

// Layout helpers
func Header(width int, title string) string {
	return Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Render(content)
}

func CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
